package runstore

import (
	"testing"
	"time"

	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*RunStoreImpl)
}

// Test run lifecycle with SQLite
func TestRunLifecycle(t *testing.T) {
	store := newMemoryStore(t)
	start := time.Now().UTC()

	runID, err := store.BeginRun(start, schema.StaleKind, map[string]any{"kind": "stale", "clusters": 3})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.EndRun(runID, start.Add(150*time.Millisecond), 12, 2))

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, schema.StaleKind, run.Kind)
	assert.Equal(t, 12, run.TotalRows)
	assert.Equal(t, 2, run.Dropped)
	assert.WithinDuration(t, start, run.StartedAt, time.Millisecond)
	require.NotNil(t, run.EndedAt)
	require.NotNil(t, run.DurationMs)
	assert.Equal(t, int64(150), *run.DurationMs)
	assert.Contains(t, run.Params, `"kind":"stale"`)
}

// Test newest-first ordering and limit
func TestListRunsOrdering(t *testing.T) {
	store := newMemoryStore(t)
	start := time.Now().UTC()

	var ids []int64
	for i := range 5 {
		id, err := store.BeginRun(start.Add(time.Duration(i)*time.Second), schema.LeadTimeKind, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := store.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[4], runs[0].RunID)
	assert.Equal(t, ids[3], runs[1].RunID)
	assert.Equal(t, ids[2], runs[2].RunID)

	// Open runs have no completion data yet
	assert.Nil(t, runs[0].EndedAt)
	assert.Nil(t, runs[0].DurationMs)
}

// Test risk score persistence and ordering
func TestRecordRiskScores(t *testing.T) {
	store := newMemoryStore(t)
	start := time.Now().UTC()

	run1, err := store.BeginRun(start, schema.StaleKind, nil)
	require.NoError(t, err)
	run2, err := store.BeginRun(start, schema.StaleKind, nil)
	require.NoError(t, err)

	require.NoError(t, store.RecordRiskScores(run2, []schema.RiskScore{
		{Row: 0, ID: "77", Value: 88.5, Bucket: schema.CriticalBucket},
	}))
	require.NoError(t, store.RecordRiskScores(run1, []schema.RiskScore{
		{Row: 1, ID: "b", Value: 12.0, Bucket: schema.LowBucket},
		{Row: 0, ID: "a", Value: 55.0, Bucket: schema.HighBucket},
	}))
	require.NoError(t, store.RecordRiskScores(run1, nil), "empty batch is a no-op")

	scores, err := store.ListRiskScores()
	require.NoError(t, err)
	require.Len(t, scores, 3)

	// Ordered by run, then row id
	assert.Equal(t, run1, scores[0].RunID)
	assert.Equal(t, "a", scores[0].RowID)
	assert.Equal(t, 55.0, scores[0].Score)
	assert.Equal(t, schema.HighBucket, scores[0].Level)
	assert.Equal(t, "b", scores[1].RowID)
	assert.Equal(t, run2, scores[2].RunID)
	assert.Equal(t, "77", scores[2].RowID)
}

// Test store status counters
func TestGetStatus(t *testing.T) {
	store := newMemoryStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, status.Backend)
	assert.Equal(t, ":memory:", status.Location)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Nil(t, status.LatestRun)

	start := time.Now().UTC()
	runID, err := store.BeginRun(start, schema.CollabKind, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordRiskScores(runID, []schema.RiskScore{
		{ID: "alice", Value: 10, Bucket: schema.LowBucket},
		{ID: "bob", Value: 90, Bucket: schema.CriticalBucket},
	}))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, 2, status.TotalRows)
	require.NotNil(t, status.LatestRun)
	assert.WithinDuration(t, start, *status.LatestRun, time.Millisecond)
}

// Test clearing all tracked data
func TestClear(t *testing.T) {
	store := newMemoryStore(t)
	start := time.Now().UTC()

	runID, err := store.BeginRun(start, schema.StaleKind, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordRiskScores(runID, []schema.RiskScore{{ID: "1", Value: 50, Bucket: schema.HighBucket}}))

	require.NoError(t, store.Clear())

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, 0, status.TotalRows)
}

// Test the disabled backend is a no-op
func TestNoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), schema.StaleKind, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	require.NoError(t, store.EndRun(0, time.Now(), 1, 0))
	require.NoError(t, store.RecordRiskScores(0, []schema.RiskScore{{ID: "x"}}))
	require.NoError(t, store.Clear())

	runs, err := store.ListRuns(5)
	require.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.NoneBackend, status.Backend)
	assert.Equal(t, 0, status.TotalRuns)
}

// Test unsupported backend rejection
func TestNewRunStoreUnsupported(t *testing.T) {
	_, err := NewRunStore(schema.DatabaseBackend("oracle"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

// Test identifier quoting per backend
func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`prlens_runs`", quoteTableName("prlens_runs", schema.MySQLBackend))
	assert.Equal(t, `"prlens_runs"`, quoteTableName("prlens_runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"prlens_runs"`, quoteTableName("prlens_runs", schema.SQLiteBackend))
}

// Test table name validation
func TestValidateTableName(t *testing.T) {
	assert.NoError(t, validateTableName("prlens_runs"))
	assert.NoError(t, validateTableName("Runs2"))
	assert.Error(t, validateTableName("1bad"))
	assert.Error(t, validateTableName("drop table;--"))
	assert.Error(t, validateTableName(""))
}

// Test time formatting per backend
func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)

	formatted := formatTime(ts, schema.SQLiteBackend)
	str, ok := formatted.(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, str)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))

	assert.Equal(t, ts, formatTime(ts, schema.MySQLBackend))
}
