package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

type reportStorage struct {
	store  *Store
	logger *common.Logger
}

// NewReportStorage creates a new ReportStorage backed by BadgerHold.
func NewReportStorage(store *Store, logger *common.Logger) *reportStorage {
	return &reportStorage{store: store, logger: logger}
}

func (s *reportStorage) SaveReport(_ context.Context, report *models.AnalysisReport) error {
	if err := s.store.db.Upsert(report.ID, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	s.logger.Debug().Str("ticker", report.Ticker).Str("id", report.ID).Msg("Report saved")
	return nil
}

func (s *reportStorage) GetLatestReport(ctx context.Context, ticker string) (*models.AnalysisReport, error) {
	reports, err := s.ListReports(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no reports for '%s'", ticker)
	}
	return reports[0], nil
}

func (s *reportStorage) ListReports(_ context.Context, ticker string) ([]*models.AnalysisReport, error) {
	var reports []models.AnalysisReport
	query := badgerhold.Where("Ticker").Eq(ticker)
	if err := s.store.db.Find(&reports, query); err != nil {
		return nil, fmt.Errorf("failed to list reports for '%s': %w", ticker, err)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].GeneratedAt.After(reports[j].GeneratedAt)
	})
	result := make([]*models.AnalysisReport, len(reports))
	for i := range reports {
		result[i] = &reports[i]
	}
	return result, nil
}
