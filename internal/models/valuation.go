package models

import (
	"time"
)

// WACCResult breaks down the weighted-average cost of capital computation.
type WACCResult struct {
	WACC         float64 `json:"wacc"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"`
	TaxRate      float64 `json:"tax_rate"`
	TotalDebt    float64 `json:"total_debt"`
	TotalEquity  float64 `json:"total_equity"`
}

// ValuationResult is the discounted-cash-flow output for a ticker.
type ValuationResult struct {
	Ticker          string    `json:"ticker"`
	WACC            float64   `json:"wacc"`
	GrowthRate      float64   `json:"growth_rate"`
	ProjectedFCF    []float64 `json:"projected_fcf"`
	TerminalValue   float64   `json:"terminal_value"`
	EnterpriseValue float64   `json:"enterprise_value"`
	TerminalGrowth  float64   `json:"terminal_growth"`
	Years           int       `json:"years"`
}

// AnalysisReport is the combined output of one full analysis run for a
// ticker. Sub-results that could not be computed are nil, with the typed
// failure rendered in Errors; partial reports are expected.
type AnalysisReport struct {
	ID         string               `json:"id"`
	Ticker     string               `json:"ticker"`
	Benchmark  string               `json:"benchmark,omitempty"`
	Balance    *NormalizedStatement `json:"balance_sheet,omitempty"`
	Income     *NormalizedStatement `json:"income_statement,omitempty"`
	CashFlow   *NormalizedStatement `json:"cash_flow,omitempty"`
	Ratios     *RatioTable          `json:"ratios,omitempty"`
	AnnualNI   []AnnualNetIncome    `json:"annual_net_income,omitempty"`
	MarketRisk *RegressionResult    `json:"market_risk,omitempty"`
	Valuation  *ValuationResult     `json:"valuation,omitempty"`
	Errors     map[string]string    `json:"errors,omitempty"` // computation name -> failure
	GeneratedAt time.Time           `json:"generated_at"`
}
