package models

import (
	"time"
)

// RatioName identifies one of the fixed set of derived ratios.
type RatioName string

const (
	RatioCurrent            RatioName = "current_ratio"
	RatioQuick              RatioName = "quick_ratio"
	RatioCash               RatioName = "cash_ratio"
	RatioDebtToEquity       RatioName = "debt_to_equity"
	RatioEquity             RatioName = "equity_ratio"
	RatioDebtToAssets       RatioName = "debt_to_assets"
	RatioGrossProfitMargin  RatioName = "gross_profit_margin"
	RatioNetProfitMargin    RatioName = "net_profit_margin"
	RatioReturnOnAssets     RatioName = "return_on_assets"
	RatioReturnOnEquity     RatioName = "return_on_equity"
	RatioAssetTurnover      RatioName = "asset_turnover"
	RatioFixedAssetTurnover RatioName = "fixed_asset_turnover"
	RatioInterestCoverage   RatioName = "interest_coverage"
)

// AllRatios lists every ratio name in presentation order.
var AllRatios = []RatioName{
	RatioCurrent,
	RatioQuick,
	RatioCash,
	RatioDebtToEquity,
	RatioEquity,
	RatioDebtToAssets,
	RatioGrossProfitMargin,
	RatioNetProfitMargin,
	RatioReturnOnAssets,
	RatioReturnOnEquity,
	RatioAssetTurnover,
	RatioFixedAssetTurnover,
	RatioInterestCoverage,
}

// RatioRecord holds the ratios derived for one reporting period. A nil entry
// means the ratio could not be computed for that period (missing concept or
// zero denominator); the table renders it as a null cell.
type RatioRecord struct {
	PeriodEnd time.Time              `json:"period_end"`
	Ratios    map[RatioName]*float64 `json:"ratios"`
}

// Get returns the ratio value, or nil when it was not computable.
func (r *RatioRecord) Get(name RatioName) *float64 {
	return r.Ratios[name]
}

// RatioTable is the per-period ratio output for one company, with advisories
// describing concepts that could not be resolved.
type RatioTable struct {
	Ticker     string        `json:"ticker"`
	Records    []RatioRecord `json:"records"`
	Advisories []string      `json:"advisories,omitempty"`
}
