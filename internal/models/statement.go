// Package models defines data structures for Tally
package models

import (
	"time"
)

// StatementType identifies which financial statement a table belongs to
type StatementType string

const (
	StatementBalanceSheet StatementType = "balance_sheet"
	StatementIncome       StatementType = "income_statement"
	StatementCashFlow     StatementType = "cash_flow"
)

// CanonicalConcept is a standardized financial line-item identifier used
// internally regardless of how a source labels it. Fixed, closed set.
type CanonicalConcept string

const (
	// Balance sheet
	ConceptTotalCurrentAssets      CanonicalConcept = "total_current_assets"
	ConceptTotalCurrentLiabilities CanonicalConcept = "total_current_liabilities"
	ConceptCashAndEquivalents      CanonicalConcept = "cash_and_equivalents"
	ConceptInventory               CanonicalConcept = "inventory"
	ConceptTotalAssets             CanonicalConcept = "total_assets"
	ConceptTotalLiabilities        CanonicalConcept = "total_liabilities"
	ConceptTotalStockholderEquity  CanonicalConcept = "total_stockholder_equity"
	ConceptPropertyPlantEquipment  CanonicalConcept = "property_plant_equipment"
	ConceptGoodwill                CanonicalConcept = "goodwill"
	ConceptIntangibleAssets        CanonicalConcept = "intangible_assets"
	ConceptLongTermInvestments     CanonicalConcept = "long_term_investments"
	ConceptOtherAssets             CanonicalConcept = "other_assets"

	// Income statement
	ConceptTotalRevenue      CanonicalConcept = "total_revenue"
	ConceptGrossProfit       CanonicalConcept = "gross_profit"
	ConceptOperatingExpenses CanonicalConcept = "operating_expenses"
	ConceptTotalExpenses     CanonicalConcept = "total_expenses"
	ConceptOperatingIncome   CanonicalConcept = "operating_income"
	ConceptNetIncome         CanonicalConcept = "net_income"
	ConceptInterestExpense   CanonicalConcept = "interest_expense"
	ConceptIncomeTaxExpense  CanonicalConcept = "income_tax_expense"
	ConceptIncomeBeforeTax   CanonicalConcept = "income_before_tax"

	// Cash flow statement
	ConceptFreeCashFlow CanonicalConcept = "free_cash_flow"
)

// RawPeriod is a single reporting period of a raw statement: arbitrary
// source labels mapped to reported values. Labels are not guaranteed
// consistent across periods or across companies. Labels preserves the
// source column order; when empty, labels are matched in sorted order.
type RawPeriod struct {
	EndDate time.Time          `json:"end_date"`
	Labels  []string           `json:"labels,omitempty"`
	Items   map[string]float64 `json:"items"`
}

// RawStatement is an ordered sequence of reporting periods as returned by a
// statement provider. Periods are chronological (oldest first). Read-only to
// the engine.
type RawStatement struct {
	Ticker  string        `json:"ticker"`
	Type    StatementType `json:"type"`
	Periods []RawPeriod   `json:"periods"`
}

// NormalizedPeriod maps canonical concepts to values for one reporting
// period. A concept missing from the map is absent, not zero.
type NormalizedPeriod struct {
	EndDate time.Time                    `json:"end_date"`
	Values  map[CanonicalConcept]float64 `json:"values"`
}

// Value returns the value for a concept and whether it is present.
func (p *NormalizedPeriod) Value(c CanonicalConcept) (float64, bool) {
	v, ok := p.Values[c]
	return v, ok
}

// Set records a value for a concept.
func (p *NormalizedPeriod) Set(c CanonicalConcept, v float64) {
	if p.Values == nil {
		p.Values = make(map[CanonicalConcept]float64)
	}
	p.Values[c] = v
}

// NormalizedStatement is a statement keyed by canonical concept per period.
type NormalizedStatement struct {
	Ticker  string             `json:"ticker"`
	Type    StatementType      `json:"type"`
	Periods []NormalizedPeriod `json:"periods"`
}

// LatestPeriod returns the most recent period, or nil when empty.
func (s *NormalizedStatement) LatestPeriod() *NormalizedPeriod {
	if len(s.Periods) == 0 {
		return nil
	}
	return &s.Periods[len(s.Periods)-1]
}

// StatementBundle groups the raw statements and price history fetched for a
// ticker in one provider call.
type StatementBundle struct {
	Ticker       string        `json:"ticker"`
	BalanceSheet *RawStatement `json:"balance_sheet,omitempty"`
	Income       *RawStatement `json:"income_statement,omitempty"`
	CashFlow     *RawStatement `json:"cash_flow,omitempty"`
	Prices       []PricePoint  `json:"prices,omitempty"`
	FetchedAt    time.Time     `json:"fetched_at"`
}

// AnnualNetIncome is a calendar-year aggregation of reconciled net income.
type AnnualNetIncome struct {
	Year      int     `json:"year"`
	NetIncome float64 `json:"net_income"`
	Periods   int     `json:"periods"`
}
