// Package storage provides the top-level StorageManager that coordinates
// the 2 storage areas: statementfs and badger.
package storage

import (
	"fmt"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/storage/badger"
	"github.com/bobmcallan/tally/internal/storage/statementfs"
)

// Manager implements interfaces.StorageManager using 2 storage areas.
type Manager struct {
	statements *statementfs.Store
	reports    *badger.Store
	logger     *common.Logger
}

// NewManager creates a new StorageManager with the 2 storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	statementStore, err := statementfs.NewStore(logger, config.Storage.Market.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create statement store: %w", err)
	}

	reportStore, err := badger.NewStore(logger, config.Storage.Reports.Path)
	if err != nil {
		statementStore.Close()
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}

	logger.Info().
		Str("statements", config.Storage.Market.Path).
		Str("reports", config.Storage.Reports.Path).
		Msg("Storage manager initialized (2 areas)")

	return &Manager{
		statements: statementStore,
		reports:    reportStore,
		logger:     logger,
	}, nil
}

func (m *Manager) StatementCache() interfaces.StatementCache {
	return m.statements.StatementCache()
}

func (m *Manager) ReportStorage() interfaces.ReportStorage {
	return badger.NewReportStorage(m.reports, m.logger)
}

func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return badger.NewKVStorage(m.reports, m.logger)
}

// DataPath returns the statement store's base data path.
func (m *Manager) DataPath() string {
	return m.statements.DataPath()
}

// WriteRaw writes arbitrary binary data (chart PNGs) under the data path.
func (m *Manager) WriteRaw(subdir, key string, data []byte) error {
	return m.statements.WriteRaw(subdir, key, data)
}

func (m *Manager) Close() error {
	var firstErr error
	if err := m.statements.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.reports.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
