// Package interfaces defines service contracts for Tally
package interfaces

import (
	"context"

	"github.com/bobmcallan/tally/internal/models"
)

// StatementCache stores fetched provider data so repeated analyses don't
// re-hit the provider inside the freshness window.
type StatementCache interface {
	// GetBundle retrieves the cached bundle for a ticker, or an error when absent
	GetBundle(ctx context.Context, ticker string) (*models.StatementBundle, error)

	// SaveBundle stores a bundle for a ticker
	SaveBundle(ctx context.Context, bundle *models.StatementBundle) error

	// DeleteBundle removes the cached bundle for a ticker
	DeleteBundle(ctx context.Context, ticker string) error

	// ListTickers returns the tickers with a cached bundle
	ListTickers(ctx context.Context) ([]string, error)
}

// ReportStorage persists analysis reports.
type ReportStorage interface {
	// SaveReport stores an analysis report
	SaveReport(ctx context.Context, report *models.AnalysisReport) error

	// GetLatestReport retrieves the most recent report for a ticker
	GetLatestReport(ctx context.Context, ticker string) (*models.AnalysisReport, error)

	// ListReports returns stored reports for a ticker, newest first
	ListReports(ctx context.Context, ticker string) ([]*models.AnalysisReport, error)
}

// KeyValueStorage provides system KV storage (runtime settings).
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// StorageManager aggregates the storage areas.
type StorageManager interface {
	StatementCache() StatementCache
	ReportStorage() ReportStorage
	KeyValueStorage() KeyValueStorage

	// WriteRaw writes an opaque file (e.g. a rendered chart) under a
	// subdirectory of the market data path
	WriteRaw(subdir, key string, data []byte) error

	Close() error
}
