package models

import (
	"time"
)

// PricePoint is a single dated closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// ReturnPoint is a single dated fractional return.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// RegressionResult holds the ordinary least-squares fit of stock returns
// (dependent) on benchmark returns (independent).
type RegressionResult struct {
	Ticker    string  `json:"ticker"`
	Benchmark string  `json:"benchmark"`
	Beta      float64 `json:"beta"`
	Alpha     float64 `json:"alpha"`
	RValue    float64 `json:"r_value"`
	PValue    float64 `json:"p_value"`
	StdErr    float64 `json:"std_err"`
	Points    int     `json:"points"` // aligned observations used in the fit
}

// CAPMParams supplies capital-asset-pricing-model inputs for the cost of
// equity. When absent, a fixed 10% cost of equity is assumed.
type CAPMParams struct {
	RiskFreeRate  float64 `json:"risk_free_rate"`
	Beta          float64 `json:"beta"`
	MarketPremium float64 `json:"market_premium"`
}
