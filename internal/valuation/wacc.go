// Package valuation computes cost of capital and discounted cash flow
package valuation

import (
	"github.com/bobmcallan/tally/internal/models"
)

// DefaultCostOfEquity is the fixed cost-of-equity assumption used when no
// CAPM inputs are supplied.
const DefaultCostOfEquity = 0.10

// ComputeWACC derives the weighted-average cost of capital from the most
// recent balance-sheet and income-statement periods.
//
//	cost_of_debt = InterestExpense / total_debt (0 when debt is 0)
//	tax_rate     = IncomeTaxExpense / IncomeBeforeTax
//	wacc         = (E/V)*Ke + (D/V)*Kd*(1 - tax_rate)
//
// Cost of equity is the fixed assumption unless capm is supplied, in which
// case Ke = risk_free + beta * market_premium. Fails with
// DegenerateValuationError when total value is not positive.
func ComputeWACC(balance, income *models.NormalizedStatement, capm *models.CAPMParams) (*models.WACCResult, error) {
	bp := latestPeriod(balance)
	ip := latestPeriod(income)
	if bp == nil || ip == nil {
		return nil, &models.InsufficientDataError{
			Computation: "WACC",
			Points:      0,
			Required:    1,
			Reason:      "no balance-sheet or income-statement periods",
		}
	}

	totalDebt, _ := bp.Value(models.ConceptTotalLiabilities)
	totalEquity, _ := bp.Value(models.ConceptTotalStockholderEquity)
	totalValue := totalDebt + totalEquity
	if totalValue <= 0 {
		return nil, &models.DegenerateValuationError{Reason: "total capital value is not positive"}
	}

	costOfDebt := 0.0
	if totalDebt != 0 {
		ie, _ := ip.Value(models.ConceptInterestExpense)
		costOfDebt = ie / totalDebt
	}

	taxRate := 0.0
	if ibt, ok := ip.Value(models.ConceptIncomeBeforeTax); ok && ibt != 0 {
		ite, _ := ip.Value(models.ConceptIncomeTaxExpense)
		taxRate = ite / ibt
	}

	costOfEquity := DefaultCostOfEquity
	if capm != nil {
		costOfEquity = capm.RiskFreeRate + capm.Beta*capm.MarketPremium
	}

	wacc := (totalEquity/totalValue)*costOfEquity + (totalDebt/totalValue)*costOfDebt*(1-taxRate)

	return &models.WACCResult{
		WACC:         wacc,
		CostOfEquity: costOfEquity,
		CostOfDebt:   costOfDebt,
		TaxRate:      taxRate,
		TotalDebt:    totalDebt,
		TotalEquity:  totalEquity,
	}, nil
}

func latestPeriod(s *models.NormalizedStatement) *models.NormalizedPeriod {
	if s == nil {
		return nil
	}
	return s.LatestPeriod()
}
