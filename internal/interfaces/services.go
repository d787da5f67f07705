// Package interfaces defines service contracts for Tally
package interfaces

import (
	"context"

	"github.com/bobmcallan/tally/internal/models"
)

// AnalysisService runs the statement-to-valuation pipeline for a ticker.
type AnalysisService interface {
	// AnalyzeTicker runs the full pipeline: fetch, normalize, reconcile,
	// ratios, market risk, valuation. Sub-computations degrade
	// independently; the report carries whatever succeeded.
	AnalyzeTicker(ctx context.Context, ticker string, options AnalyzeOptions) (*models.AnalysisReport, error)

	// GetNormalizedStatements fetches and normalizes statements for a ticker
	GetNormalizedStatements(ctx context.Context, ticker string, force bool) (balance, income, cashflow *models.NormalizedStatement, err error)

	// ComputeRatios derives the per-period ratio table for a ticker
	ComputeRatios(ctx context.Context, ticker string, force bool) (*models.RatioTable, error)

	// EstimateMarketRisk regresses a ticker's returns on the benchmark
	EstimateMarketRisk(ctx context.Context, ticker string) (*models.RegressionResult, error)

	// ValueCompany computes WACC and the DCF enterprise-value estimate
	ValueCompany(ctx context.Context, ticker string, capm *models.CAPMParams) (*models.ValuationResult, error)

	// RenderValuationChart renders the projection chart for a stored or
	// freshly computed valuation as PNG bytes
	RenderValuationChart(ctx context.Context, ticker string) ([]byte, error)
}

// AnalyzeOptions configures a full analysis run.
type AnalyzeOptions struct {
	Force     bool               // bypass cached provider data
	CAPM      *models.CAPMParams // optional cost-of-equity inputs
	Benchmark string             // override the configured benchmark ticker
}
