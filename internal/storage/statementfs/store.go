// Package statementfs implements file-based storage for fetched statement
// bundles. Each ticker's bundle is a JSON file, written atomically.
package statementfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// Store provides file-based JSON storage for statement bundles.
type Store struct {
	basePath      string
	statementsDir string
	logger        *common.Logger
}

// NewStore creates a new statement file store.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create statement store path %s: %w", path, err)
	}
	statementsDir := filepath.Join(path, "statements")
	os.MkdirAll(statementsDir, 0755)

	logger.Info().Str("path", path).Msg("Statement store opened")
	return &Store{
		basePath:      path,
		statementsDir: statementsDir,
		logger:        logger,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// StatementCache returns the statement cache interface.
func (s *Store) StatementCache() interfaces.StatementCache {
	return &statementCache{store: s}
}

// WriteRaw writes arbitrary binary data to a subdirectory atomically.
func (s *Store) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filepath.Join(dir, sanitizeKey(key))

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// PurgeStatements removes all cached bundles and returns the count.
func (s *Store) PurgeStatements() int {
	keys, err := listKeys(s.statementsDir)
	if err != nil {
		return 0
	}
	count := 0
	for _, key := range keys {
		os.Remove(filePath(s.statementsDir, key))
		count++
	}
	return count
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func filePath(dir, key string) string {
	return filepath.Join(dir, sanitizeKey(key)+".json")
}

func readJSON(dir, key string, dest interface{}) error {
	path := filePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' not found", key)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	return json.Unmarshal(data, dest)
}

func writeJSON(dir, key string, data interface{}) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filePath(dir, key)
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func listKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".tmp-") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys, nil
}

// --- StatementCache ---

type statementCache struct {
	store *Store
}

func (c *statementCache) GetBundle(_ context.Context, ticker string) (*models.StatementBundle, error) {
	var bundle models.StatementBundle
	if err := readJSON(c.store.statementsDir, ticker, &bundle); err != nil {
		return nil, fmt.Errorf("statements for '%s' not found", ticker)
	}
	return &bundle, nil
}

func (c *statementCache) SaveBundle(_ context.Context, bundle *models.StatementBundle) error {
	if bundle.FetchedAt.IsZero() {
		bundle.FetchedAt = time.Now()
	}
	if err := writeJSON(c.store.statementsDir, bundle.Ticker, bundle); err != nil {
		return fmt.Errorf("failed to save statements: %w", err)
	}
	c.store.logger.Debug().Str("ticker", bundle.Ticker).Msg("Statement bundle saved")
	return nil
}

func (c *statementCache) DeleteBundle(_ context.Context, ticker string) error {
	os.Remove(filePath(c.store.statementsDir, ticker))
	return nil
}

func (c *statementCache) ListTickers(_ context.Context) ([]string, error) {
	return listKeys(c.store.statementsDir)
}
