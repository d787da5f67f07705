package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/models"
)

var waccEnd = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

func statement(st models.StatementType, periods ...models.NormalizedPeriod) *models.NormalizedStatement {
	return &models.NormalizedStatement{Ticker: "TEST.AU", Type: st, Periods: periods}
}

func period(end time.Time, values map[models.CanonicalConcept]float64) models.NormalizedPeriod {
	return models.NormalizedPeriod{EndDate: end, Values: values}
}

func testBalance(debt, equity float64) *models.NormalizedStatement {
	return statement(models.StatementBalanceSheet, period(waccEnd, map[models.CanonicalConcept]float64{
		models.ConceptTotalLiabilities:       debt,
		models.ConceptTotalStockholderEquity: equity,
	}))
}

func testIncome(interest, tax, pretax float64) *models.NormalizedStatement {
	return statement(models.StatementIncome, period(waccEnd, map[models.CanonicalConcept]float64{
		models.ConceptInterestExpense:  interest,
		models.ConceptIncomeTaxExpense: tax,
		models.ConceptIncomeBeforeTax:  pretax,
	}))
}

func TestComputeWACC(t *testing.T) {
	balance := testBalance(400, 600)
	income := testIncome(20, 30, 100)

	result, err := ComputeWACC(balance, income, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, result.CostOfDebt, 1e-9)   // 20 / 400
	assert.InDelta(t, 0.30, result.TaxRate, 1e-9)      // 30 / 100
	assert.InDelta(t, 0.10, result.CostOfEquity, 1e-9) // fixed assumption
	assert.InDelta(t, 400.0, result.TotalDebt, 1e-9)
	assert.InDelta(t, 600.0, result.TotalEquity, 1e-9)

	// (600/1000)*0.10 + (400/1000)*0.05*(1-0.30)
	assert.InDelta(t, 0.06+0.014, result.WACC, 1e-9)
}

func TestComputeWACCWithCAPM(t *testing.T) {
	balance := testBalance(0, 1000)
	income := testIncome(0, 0, 0)

	capm := &models.CAPMParams{RiskFreeRate: 0.04, Beta: 1.5, MarketPremium: 0.06}
	result, err := ComputeWACC(balance, income, capm)
	require.NoError(t, err)

	// Ke = 0.04 + 1.5*0.06
	assert.InDelta(t, 0.13, result.CostOfEquity, 1e-9)
	assert.InDelta(t, 0.13, result.WACC, 1e-9)
}

func TestComputeWACCZeroDebt(t *testing.T) {
	balance := testBalance(0, 1000)
	income := testIncome(20, 30, 100)

	result, err := ComputeWACC(balance, income, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.CostOfDebt)
	assert.InDelta(t, 0.10, result.WACC, 1e-9)
}

func TestComputeWACCZeroPretaxIncome(t *testing.T) {
	balance := testBalance(400, 600)
	income := testIncome(20, 30, 0)

	result, err := ComputeWACC(balance, income, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.TaxRate)
}

func TestComputeWACCNonPositiveCapital(t *testing.T) {
	// Negative equity exceeding debt: weights are undefined
	balance := testBalance(100, -400)
	income := testIncome(5, 0, 10)

	_, err := ComputeWACC(balance, income, nil)
	require.Error(t, err)

	var degenerate *models.DegenerateValuationError
	require.ErrorAs(t, err, &degenerate)
}

func TestComputeWACCNoPeriods(t *testing.T) {
	tests := []struct {
		name    string
		balance *models.NormalizedStatement
		income  *models.NormalizedStatement
	}{
		{"nil balance", nil, testIncome(20, 30, 100)},
		{"nil income", testBalance(400, 600), nil},
		{"empty balance", statement(models.StatementBalanceSheet), testIncome(20, 30, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeWACC(tt.balance, tt.income, nil)
			require.Error(t, err)

			var insufficient *models.InsufficientDataError
			require.ErrorAs(t, err, &insufficient)
		})
	}
}

func TestComputeWACCUsesLatestPeriod(t *testing.T) {
	older := period(waccEnd.AddDate(0, -3, 0), map[models.CanonicalConcept]float64{
		models.ConceptTotalLiabilities:       900,
		models.ConceptTotalStockholderEquity: 100,
	})
	newer := period(waccEnd, map[models.CanonicalConcept]float64{
		models.ConceptTotalLiabilities:       400,
		models.ConceptTotalStockholderEquity: 600,
	})
	balance := statement(models.StatementBalanceSheet, older, newer)
	income := testIncome(20, 30, 100)

	result, err := ComputeWACC(balance, income, nil)
	require.NoError(t, err)
	assert.InDelta(t, 400.0, result.TotalDebt, 1e-9)
	assert.InDelta(t, 600.0, result.TotalEquity, 1e-9)
}
