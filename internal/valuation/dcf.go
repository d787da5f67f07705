package valuation

import (
	"math"

	"github.com/bobmcallan/tally/internal/models"
)

// Default projection parameters.
const (
	DefaultProjectionYears = 5
	DefaultTerminalGrowth  = 0.02
)

// ProjectDCF projects free cash flow forward and discounts it to an
// enterprise-value estimate. The growth rate is the single-period growth of
// the last two reported FCF values; the terminal value is a Gordon-growth
// perpetuity discounted back over the projection horizon.
//
// Fails with InsufficientDataError when fewer than 2 FCF periods exist and
// DegenerateValuationError when wacc <= terminalGrowth (terminal value
// undefined or negative).
func ProjectDCF(cashflow *models.NormalizedStatement, wacc float64, years int, terminalGrowth float64) (*models.ValuationResult, error) {
	if years <= 0 {
		years = DefaultProjectionYears
	}

	fcf := fcfSeries(cashflow)
	if len(fcf) < 2 {
		return nil, &models.InsufficientDataError{
			Computation: "DCF projection",
			Points:      len(fcf),
			Required:    2,
			Reason:      "fewer than 2 periods of free cash flow",
		}
	}

	if wacc <= terminalGrowth {
		return nil, &models.DegenerateValuationError{
			Reason: "discount rate does not exceed terminal growth rate",
		}
	}

	prev := fcf[len(fcf)-2]
	last := fcf[len(fcf)-1]
	if prev == 0 {
		return nil, &models.DegenerateValuationError{
			Reason: "prior-period free cash flow is zero, growth rate undefined",
		}
	}
	growth := last/prev - 1

	projected := make([]float64, years)
	discounted := 0.0
	cf := last
	for i := 0; i < years; i++ {
		cf *= 1 + growth
		projected[i] = cf
		discounted += cf / math.Pow(1+wacc, float64(i+1))
	}

	terminal := projected[years-1] * (1 + terminalGrowth) / (wacc - terminalGrowth)
	discountedTerminal := terminal / math.Pow(1+wacc, float64(years))

	result := &models.ValuationResult{
		WACC:            wacc,
		GrowthRate:      growth,
		ProjectedFCF:    projected,
		TerminalValue:   terminal,
		EnterpriseValue: discounted + discountedTerminal,
		TerminalGrowth:  terminalGrowth,
		Years:           years,
	}
	if cashflow != nil {
		result.Ticker = cashflow.Ticker
	}
	return result, nil
}

// fcfSeries extracts the chronological free-cash-flow values present on a
// normalized cash-flow statement. Periods without the concept are skipped.
func fcfSeries(cashflow *models.NormalizedStatement) []float64 {
	if cashflow == nil {
		return nil
	}
	out := make([]float64, 0, len(cashflow.Periods))
	for _, p := range cashflow.Periods {
		if v, ok := p.Value(models.ConceptFreeCashFlow); ok {
			out = append(out, v)
		}
	}
	return out
}
