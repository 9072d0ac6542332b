package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(nil)
	path := filepath.Join(t.TempDir(), "state.db")
	require.NoError(t, store.Open(path))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())
	return store
}

func TestMigrate(t *testing.T) {
	store := newTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, int64(1))

	// Migrating again is a no-op.
	require.NoError(t, store.Migrate())
}

func TestCreateAndGetRun(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("dev", 2025)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "dev", run.Environment)
	assert.Equal(t, 2025, run.Year)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, RunStatusRunning, got.Status)
	assert.Nil(t, got.CompletedAt)

	_, err = store.GetRun("nonexistent")
	assert.Error(t, err)
}

func TestCompleteRun(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("dev", 2025)
	require.NoError(t, err)

	counts := RowCounts{Onboarding: 100, Transactions: 500, Deposits: 120}
	require.NoError(t, store.CompleteRun(run.ID, RunStatusSuccess, "", counts))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusSuccess, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, int64(100), got.OnboardingRows)
	assert.Equal(t, int64(500), got.TransactionRows)
	assert.Equal(t, int64(120), got.DepositRows)
	assert.Empty(t, got.Error)
}

func TestCompleteRun_Failed(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("dev", 2025)
	require.NoError(t, err)

	require.NoError(t, store.CompleteRun(run.ID, RunStatusFailed, "load failed", RowCounts{}))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "load failed", got.Error)
}

func TestCompleteRun_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.CompleteRun("missing", RunStatusSuccess, "", RowCounts{})
	assert.Error(t, err)
}

func TestGetLatestRun(t *testing.T) {
	store := newTestStore(t)

	latest, err := store.GetLatestRun("dev")
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = store.CreateRun("dev", 2024)
	require.NoError(t, err)

	_, err = store.CreateRun("prod", 2025)
	require.NoError(t, err)

	latest, err = store.GetLatestRun("prod")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "prod", latest.Environment)
	assert.Equal(t, 2025, latest.Year)
}

func TestListRuns(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.CreateRun("dev", 2025)
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	all, err := store.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSaveAndGetMetrics(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("dev", 2025)
	require.NoError(t, err)

	metrics := []MetricValue{
		{Name: "Total Transactions", Value: "500"},
		{Name: "Transaction Volume", Value: "12345.67"},
	}
	require.NoError(t, store.SaveMetrics(run.ID, metrics))

	got, err := store.GetMetrics(run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by name.
	assert.Equal(t, "Total Transactions", got[0].Name)
	assert.Equal(t, "500", got[0].Value)

	// Saving again replaces the snapshot.
	require.NoError(t, store.SaveMetrics(run.ID, []MetricValue{
		{Name: "Total Transactions", Value: "501"},
	}))
	got, err = store.GetMetrics(run.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "501", got[0].Value)
}

func TestNotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	_, err := store.CreateRun("dev", 2025)
	assert.Error(t, err)
	_, err = store.ListRuns(1)
	assert.Error(t, err)
	assert.Error(t, store.Migrate())
}
