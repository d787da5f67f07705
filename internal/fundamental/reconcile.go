package fundamental

import (
	"sort"

	"github.com/bobmcallan/tally/internal/models"
)

// ReconcileNetIncome fills missing NetIncome values on an income statement
// from available sub-components. Directly reported values are left
// unchanged. Derivation order per period: gross profit minus operating
// expenses, then revenue minus total expenses. Periods where neither is
// computable keep NetIncome absent; the statement is never aborted.
func ReconcileNetIncome(income *models.NormalizedStatement) *models.NormalizedStatement {
	if income == nil {
		return nil
	}

	out := &models.NormalizedStatement{
		Ticker:  income.Ticker,
		Type:    income.Type,
		Periods: make([]models.NormalizedPeriod, 0, len(income.Periods)),
	}

	for _, p := range income.Periods {
		np := models.NormalizedPeriod{
			EndDate: p.EndDate,
			Values:  make(map[models.CanonicalConcept]float64, len(p.Values)),
		}
		for c, v := range p.Values {
			np.Values[c] = v
		}

		if _, ok := np.Value(models.ConceptNetIncome); !ok {
			if ni, ok := deriveNetIncome(&np); ok {
				np.Set(models.ConceptNetIncome, ni)
			}
		}

		out.Periods = append(out.Periods, np)
	}

	return out
}

func deriveNetIncome(p *models.NormalizedPeriod) (float64, bool) {
	gp, ok1 := p.Value(models.ConceptGrossProfit)
	oe, ok2 := p.Value(models.ConceptOperatingExpenses)
	if ok1 && ok2 {
		return gp - oe, true
	}

	rev, ok1 := p.Value(models.ConceptTotalRevenue)
	te, ok2 := p.Value(models.ConceptTotalExpenses)
	if ok1 && ok2 {
		return rev - te, true
	}

	return 0, false
}

// AggregateAnnualNetIncome groups income periods by calendar year of their
// end date and sums the available NetIncome values. Years with no
// contributing period produce no row.
func AggregateAnnualNetIncome(income *models.NormalizedStatement) []models.AnnualNetIncome {
	if income == nil {
		return nil
	}

	byYear := make(map[int]*models.AnnualNetIncome)
	for _, p := range income.Periods {
		ni, ok := p.Value(models.ConceptNetIncome)
		if !ok {
			continue
		}
		year := p.EndDate.Year()
		agg, exists := byYear[year]
		if !exists {
			agg = &models.AnnualNetIncome{Year: year}
			byYear[year] = agg
		}
		agg.NetIncome += ni
		agg.Periods++
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]models.AnnualNetIncome, 0, len(years))
	for _, y := range years {
		out = append(out, *byYear[y])
	}
	return out
}
