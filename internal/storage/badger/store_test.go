package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKVStorage(t *testing.T) {
	store := newTestStore(t)
	kv := NewKVStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "last_refresh", "2024-03-31"))

	value, err := kv.Get(ctx, "last_refresh")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31", value)

	require.NoError(t, kv.Delete(ctx, "last_refresh"))

	_, err = kv.Get(ctx, "last_refresh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	// Deleting a missing key is not an error
	require.NoError(t, kv.Delete(ctx, "never_set"))
}

func TestReportStorage(t *testing.T) {
	store := newTestStore(t)
	reports := NewReportStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	older := &models.AnalysisReport{
		ID:          "r1",
		Ticker:      "BHP.AU",
		GeneratedAt: time.Now().Add(-time.Hour),
	}
	newer := &models.AnalysisReport{
		ID:          "r2",
		Ticker:      "BHP.AU",
		GeneratedAt: time.Now(),
	}
	other := &models.AnalysisReport{
		ID:          "r3",
		Ticker:      "CBA.AU",
		GeneratedAt: time.Now(),
	}

	require.NoError(t, reports.SaveReport(ctx, older))
	require.NoError(t, reports.SaveReport(ctx, newer))
	require.NoError(t, reports.SaveReport(ctx, other))

	latest, err := reports.GetLatestReport(ctx, "BHP.AU")
	require.NoError(t, err)
	assert.Equal(t, "r2", latest.ID)

	list, err := reports.ListReports(ctx, "BHP.AU")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.Equal(t, "r1", list[1].ID)

	_, err = reports.GetLatestReport(ctx, "NOPE.AU")
	require.Error(t, err)
}
