// Package analysis orchestrates the statement-to-valuation pipeline:
// fetch, normalize, reconcile, ratios, market risk, WACC and DCF.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/fundamental"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/quant"
	"github.com/bobmcallan/tally/internal/valuation"
)

// Service implements AnalysisService against a statement provider and the
// local storage areas.
type Service struct {
	client    interfaces.StatementClient
	benchmark interfaces.BenchmarkClient
	storage   interfaces.StorageManager
	config    *common.Config
	logger    *common.Logger
}

// NewService creates a new analysis service.
func NewService(client interfaces.StatementClient, benchmark interfaces.BenchmarkClient, storage interfaces.StorageManager, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		client:    client,
		benchmark: benchmark,
		storage:   storage,
		config:    config,
		logger:    logger,
	}
}

var _ interfaces.AnalysisService = (*Service)(nil)

// getBundle returns the cached bundle for a ticker when fresh, fetching
// from the provider otherwise. force bypasses the cache.
func (s *Service) getBundle(ctx context.Context, ticker string, force bool) (*models.StatementBundle, error) {
	if !force {
		if cached, err := s.storage.StatementCache().GetBundle(ctx, ticker); err == nil {
			if common.IsFresh(cached.FetchedAt, common.FreshnessStatements) {
				s.logger.Debug().Str("ticker", ticker).Msg("Statement cache hit")
				return cached, nil
			}
		}
	}

	bundle, err := s.client.GetStatements(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statements for %s: %w", ticker, err)
	}

	if err := s.storage.StatementCache().SaveBundle(ctx, bundle); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache statement bundle")
	}

	return bundle, nil
}

// GetNormalizedStatements fetches raw statements and maps their labels onto
// canonical concepts. A statement the provider did not return comes back nil.
func (s *Service) GetNormalizedStatements(ctx context.Context, ticker string, force bool) (balance, income, cashflow *models.NormalizedStatement, err error) {
	bundle, err := s.getBundle(ctx, ticker, force)
	if err != nil {
		return nil, nil, nil, err
	}

	if bundle.BalanceSheet != nil {
		balance, err = fundamental.Normalize(bundle.BalanceSheet, fundamental.ConceptKeywords)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("balance sheet: %w", err)
		}
	}
	if bundle.Income != nil {
		income, err = fundamental.Normalize(bundle.Income, fundamental.ConceptKeywords)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("income statement: %w", err)
		}
	}
	if bundle.CashFlow != nil {
		cashflow, err = fundamental.Normalize(bundle.CashFlow, fundamental.ConceptKeywords)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("cash flow: %w", err)
		}
	}

	return balance, income, cashflow, nil
}

// ComputeRatios derives the per-period ratio table for a ticker. Net income
// is reconciled before the table is built so profitability ratios survive a
// missing reported figure.
func (s *Service) ComputeRatios(ctx context.Context, ticker string, force bool) (*models.RatioTable, error) {
	balance, income, _, err := s.GetNormalizedStatements(ctx, ticker, force)
	if err != nil {
		return nil, err
	}

	if income != nil {
		income = fundamental.ReconcileNetIncome(income)
	}

	table := fundamental.ComputeRatios(balance, income)
	table.Ticker = ticker
	return table, nil
}

// benchmarkTicker resolves the benchmark, preferring the override.
func (s *Service) benchmarkTicker(override string) string {
	if override != "" {
		return override
	}
	return s.config.Benchmark.Ticker
}

// estimateMarketRisk regresses the ticker's daily returns on the benchmark's
// over the configured lookback. Price histories are fetched in parallel.
func (s *Service) estimateMarketRisk(ctx context.Context, ticker, benchmark string) (*models.RegressionResult, error) {
	to := time.Now()
	from := to.Add(-s.config.Benchmark.GetLookback())

	var stockPrices, indexPrices []models.PricePoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stockPrices, err = s.client.GetPrices(gctx, ticker, from, to)
		if err != nil {
			return fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		indexPrices, err = s.benchmark.GetIndexPrices(gctx, benchmark, from, to)
		if err != nil {
			return fmt.Errorf("failed to fetch benchmark prices for %s: %w", benchmark, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := quant.EstimateBetaAlpha(stockPrices, indexPrices)
	if err != nil {
		return nil, err
	}
	result.Ticker = ticker
	result.Benchmark = benchmark

	s.logger.Info().
		Str("ticker", ticker).
		Str("benchmark", benchmark).
		Float64("beta", result.Beta).
		Int("points", result.Points).
		Msg("Market risk estimated")

	return result, nil
}

// EstimateMarketRisk regresses a ticker's returns on the configured benchmark.
func (s *Service) EstimateMarketRisk(ctx context.Context, ticker string) (*models.RegressionResult, error) {
	return s.estimateMarketRisk(ctx, ticker, s.benchmarkTicker(""))
}

// ValueCompany computes WACC from the latest statements and discounts the
// projected free cash flows. When capm is nil the configured default cost of
// equity applies.
func (s *Service) ValueCompany(ctx context.Context, ticker string, capm *models.CAPMParams) (*models.ValuationResult, error) {
	balance, income, cashflow, err := s.GetNormalizedStatements(ctx, ticker, false)
	if err != nil {
		return nil, err
	}
	if income != nil {
		income = fundamental.ReconcileNetIncome(income)
	}

	wacc, err := valuation.ComputeWACC(balance, income, capm)
	if err != nil {
		return nil, err
	}

	result, err := valuation.ProjectDCF(cashflow, wacc.WACC, s.config.Valuation.ProjectionYears, s.config.Valuation.TerminalGrowth)
	if err != nil {
		return nil, err
	}
	result.Ticker = ticker

	s.logger.Info().
		Str("ticker", ticker).
		Float64("wacc", wacc.WACC).
		Float64("enterprise_value", result.EnterpriseValue).
		Msg("Valuation computed")

	return result, nil
}

// AnalyzeTicker runs the full pipeline. Sub-computations degrade
// independently: a failed regression or valuation lands in the report's
// Errors map while the rest of the report stands.
func (s *Service) AnalyzeTicker(ctx context.Context, ticker string, options interfaces.AnalyzeOptions) (*models.AnalysisReport, error) {
	benchmark := s.benchmarkTicker(options.Benchmark)

	report := &models.AnalysisReport{
		ID:          uuid.New().String(),
		Ticker:      ticker,
		Benchmark:   benchmark,
		Errors:      make(map[string]string),
		GeneratedAt: time.Now(),
	}

	balance, income, cashflow, err := s.GetNormalizedStatements(ctx, ticker, options.Force)
	if err != nil {
		return nil, fmt.Errorf("analysis of %s failed: %w", ticker, err)
	}
	if income != nil {
		income = fundamental.ReconcileNetIncome(income)
		report.AnnualNI = fundamental.AggregateAnnualNetIncome(income)
	}
	report.Balance = balance
	report.Income = income
	report.CashFlow = cashflow

	report.Ratios = fundamental.ComputeRatios(balance, income)
	report.Ratios.Ticker = ticker

	if risk, err := s.estimateMarketRisk(ctx, ticker, benchmark); err != nil {
		report.Errors["market_risk"] = err.Error()
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Market risk estimation failed")
	} else {
		report.MarketRisk = risk
	}

	capm := options.CAPM
	if capm == nil && report.MarketRisk != nil {
		capm = &models.CAPMParams{
			RiskFreeRate:  s.config.Valuation.RiskFreeRate,
			Beta:          report.MarketRisk.Beta,
			MarketPremium: s.config.Valuation.MarketPremium,
		}
	}

	wacc, err := valuation.ComputeWACC(balance, income, capm)
	if err != nil {
		report.Errors["wacc"] = err.Error()
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("WACC computation failed")
	} else {
		result, err := valuation.ProjectDCF(cashflow, wacc.WACC, s.config.Valuation.ProjectionYears, s.config.Valuation.TerminalGrowth)
		if err != nil {
			report.Errors["valuation"] = err.Error()
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Valuation failed")
		} else {
			result.Ticker = ticker
			report.Valuation = result
		}
	}

	if err := s.storage.ReportStorage().SaveReport(ctx, report); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to persist report")
	}
	if err := s.storage.KeyValueStorage().Set(ctx, "last_analysis:"+ticker, report.GeneratedAt.Format(time.RFC3339)); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to record analysis timestamp")
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("report_id", report.ID).
		Int("errors", len(report.Errors)).
		Msg("Analysis complete")

	return report, nil
}
