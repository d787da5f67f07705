package fundamental

import (
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/models"
)

// term is one signed operand in a ratio numerator.
type term struct {
	concept models.CanonicalConcept
	sign    float64
}

// ratioDef defines a ratio as a signed sum of concepts over a denominator
// concept. The table is the single source of every ratio formula.
type ratioDef struct {
	name models.RatioName
	num  []term
	den  models.CanonicalConcept
}

var ratioDefs = []ratioDef{
	{models.RatioCurrent, []term{{models.ConceptTotalCurrentAssets, 1}}, models.ConceptTotalCurrentLiabilities},
	{models.RatioQuick, []term{{models.ConceptTotalCurrentAssets, 1}, {models.ConceptInventory, -1}}, models.ConceptTotalCurrentLiabilities},
	{models.RatioCash, []term{{models.ConceptCashAndEquivalents, 1}}, models.ConceptTotalCurrentLiabilities},
	{models.RatioDebtToEquity, []term{{models.ConceptTotalLiabilities, 1}}, models.ConceptTotalStockholderEquity},
	{models.RatioEquity, []term{{models.ConceptTotalStockholderEquity, 1}}, models.ConceptTotalAssets},
	{models.RatioDebtToAssets, []term{{models.ConceptTotalLiabilities, 1}}, models.ConceptTotalAssets},
	{models.RatioGrossProfitMargin, []term{{models.ConceptGrossProfit, 1}}, models.ConceptTotalRevenue},
	{models.RatioNetProfitMargin, []term{{models.ConceptNetIncome, 1}}, models.ConceptTotalRevenue},
	{models.RatioReturnOnAssets, []term{{models.ConceptNetIncome, 1}}, models.ConceptTotalAssets},
	{models.RatioReturnOnEquity, []term{{models.ConceptNetIncome, 1}}, models.ConceptTotalStockholderEquity},
	{models.RatioAssetTurnover, []term{{models.ConceptTotalRevenue, 1}}, models.ConceptTotalAssets},
	{models.RatioFixedAssetTurnover, []term{{models.ConceptTotalRevenue, 1}}, models.ConceptPropertyPlantEquipment},
	{models.RatioInterestCoverage, []term{{models.ConceptOperatingIncome, 1}}, models.ConceptInterestExpense},
}

// ComputeRatios derives the fixed ratio set per period from normalized
// balance-sheet and income-statement tables. Periods are merged on end date;
// each ratio degrades independently to a null cell when an operand concept
// is absent or the denominator is exactly zero. Pure function: missing
// fields become advisories, never errors.
func ComputeRatios(balance, income *models.NormalizedStatement) *models.RatioTable {
	table := &models.RatioTable{}
	if balance != nil {
		table.Ticker = balance.Ticker
	} else if income != nil {
		table.Ticker = income.Ticker
	}

	merged := mergePeriods(balance, income)
	seen := make(map[string]bool)

	for _, mp := range merged {
		deriveTotalAssets(&mp.period)
		deriveEBIT(&mp.period)

		rec := models.RatioRecord{
			PeriodEnd: mp.period.EndDate,
			Ratios:    make(map[models.RatioName]*float64, len(ratioDefs)),
		}

		for _, def := range ratioDefs {
			value, missing := evalRatio(&mp.period, def)
			rec.Ratios[def.name] = value
			for _, c := range missing {
				key := string(c)
				if !seen[key] {
					seen[key] = true
					table.Advisories = append(table.Advisories,
						fmt.Sprintf("concept %s unavailable in one or more periods", c))
				}
			}
		}

		table.Records = append(table.Records, rec)
	}

	sort.Strings(table.Advisories)
	return table
}

// evalRatio computes one ratio for one merged period. Returns nil when any
// operand is absent or the denominator is exactly zero, along with the
// concepts that were missing.
func evalRatio(p *models.NormalizedPeriod, def ratioDef) (*float64, []models.CanonicalConcept) {
	var missing []models.CanonicalConcept

	num := 0.0
	ok := true
	for _, t := range def.num {
		v, present := p.Value(t.concept)
		if !present {
			missing = append(missing, t.concept)
			ok = false
			continue
		}
		num += t.sign * v
	}

	den, present := p.Value(def.den)
	if !present {
		missing = append(missing, def.den)
		ok = false
	}

	if !ok || den == 0 {
		return nil, missing
	}

	v := num / den
	return &v, nil
}

// deriveTotalAssets fills TotalAssets from its components when absent and
// all components are reported. Runs once per period, before any ratio. A
// directly reported value is never overwritten.
func deriveTotalAssets(p *models.NormalizedPeriod) {
	if _, ok := p.Value(models.ConceptTotalAssets); ok {
		return
	}
	sum := 0.0
	for _, c := range totalAssetComponents {
		v, ok := p.Value(c)
		if !ok {
			return
		}
		sum += v
	}
	p.Set(models.ConceptTotalAssets, sum)
}

// deriveEBIT fills OperatingIncome (EBIT) from pre-tax income plus interest
// expense when the statement reports neither an operating income nor an
// EBIT line directly.
func deriveEBIT(p *models.NormalizedPeriod) {
	if _, ok := p.Value(models.ConceptOperatingIncome); ok {
		return
	}
	ibt, ok1 := p.Value(models.ConceptIncomeBeforeTax)
	ie, ok2 := p.Value(models.ConceptInterestExpense)
	if ok1 && ok2 {
		p.Set(models.ConceptOperatingIncome, ibt+ie)
	}
}

type mergedPeriod struct {
	period models.NormalizedPeriod
}

// mergePeriods joins balance and income periods on end date across the
// union of dates, income values layered over balance values. The two
// statements share no concepts, so layering never overwrites.
func mergePeriods(balance, income *models.NormalizedStatement) []mergedPeriod {
	byDate := make(map[time.Time]*models.NormalizedPeriod)
	var order []time.Time

	add := func(s *models.NormalizedStatement) {
		if s == nil {
			return
		}
		for _, p := range s.Periods {
			mp, ok := byDate[p.EndDate]
			if !ok {
				mp = &models.NormalizedPeriod{EndDate: p.EndDate, Values: make(map[models.CanonicalConcept]float64)}
				byDate[p.EndDate] = mp
				order = append(order, p.EndDate)
			}
			for c, v := range p.Values {
				mp.Values[c] = v
			}
		}
	}
	add(balance)
	add(income)

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]mergedPeriod, 0, len(order))
	for _, d := range order {
		out = append(out, mergedPeriod{period: *byDate[d]})
	}
	return out
}
