// Package interfaces defines service contracts for Tally
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/tally/internal/models"
)

// StatementClient resolves a ticker to raw per-period financial statements.
// Labels come back exactly as the source reports them; normalization is the
// engine's job, not the client's.
type StatementClient interface {
	// GetStatements retrieves raw balance-sheet, income and cash-flow tables
	GetStatements(ctx context.Context, ticker string) (*models.StatementBundle, error)

	// GetPrices retrieves a daily closing-price history
	GetPrices(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error)
}

// BenchmarkClient resolves a market-index ticker to a price series for the
// same date range as a stock's history.
type BenchmarkClient interface {
	// GetIndexPrices retrieves a daily index price history
	GetIndexPrices(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error)
}
