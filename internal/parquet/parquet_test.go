package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/prlens/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(s *parquet.Schema) []string {
	names := make([]string, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		names = append(names, f.Name())
	}
	return names
}

// Test the derived schema matches the run table columns
func TestAnalysisRunSchema(t *testing.T) {
	s := parquet.SchemaOf(new(AnalysisRun))
	assert.ElementsMatch(t, []string{
		"run_id", "start_time", "end_time", "run_duration_ms",
		"report_kind", "total_rows", "dropped_rows", "config_params",
	}, fieldNames(s))
}

// Test the derived schema matches the risk score table columns
func TestRowRiskScoreSchema(t *testing.T) {
	s := parquet.SchemaOf(new(RowRiskScore))
	assert.ElementsMatch(t, []string{
		"run_id", "row_id", "risk_score", "risk_level",
	}, fieldNames(s))
}

// Test writing and reading runs round trip
func TestWriteAnalysisRunsParquet(t *testing.T) {
	end := time.Date(2026, 8, 1, 12, 0, 1, 0, time.UTC)
	duration := int64(1000)
	params := `{"kind":"stale"}`
	data := []AnalysisRun{
		{
			RunID:         1,
			StartTime:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			EndTime:       &end,
			RunDurationMs: &duration,
			ReportKind:    "stale",
			TotalRows:     12,
			DroppedRows:   2,
			ConfigParams:  &params,
		},
		{
			RunID:      2,
			StartTime:  time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
			ReportKind: "leadtime",
		},
	}

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteAnalysisRunsParquet(data, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[AnalysisRun](file)
	defer func() { _ = reader.Close() }()

	rows := make([]AnalysisRun, 2)
	n, _ := reader.Read(rows)
	require.Equal(t, 2, n)

	assert.Equal(t, int64(1), rows[0].RunID)
	assert.True(t, rows[0].StartTime.Equal(data[0].StartTime))
	require.NotNil(t, rows[0].EndTime)
	assert.True(t, rows[0].EndTime.Equal(end))
	require.NotNil(t, rows[0].RunDurationMs)
	assert.Equal(t, int64(1000), *rows[0].RunDurationMs)
	assert.Equal(t, "stale", rows[0].ReportKind)
	assert.Equal(t, int32(12), rows[0].TotalRows)
	require.NotNil(t, rows[0].ConfigParams)
	assert.Equal(t, params, *rows[0].ConfigParams)

	// Nullable columns stay null
	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].RunDurationMs)
	assert.Nil(t, rows[1].ConfigParams)
}

// Test writing and reading risk scores round trip
func TestWriteRiskScoresParquet(t *testing.T) {
	data := []RowRiskScore{
		{RunID: 1, RowID: "101", RiskScore: 87.5, RiskLevel: "Critical"},
		{RunID: 1, RowID: "102", RiskScore: 12.0, RiskLevel: "Low"},
	}

	path := filepath.Join(t.TempDir(), "scores.parquet")
	require.NoError(t, WriteRiskScoresParquet(data, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[RowRiskScore](file)
	defer func() { _ = reader.Close() }()

	rows := make([]RowRiskScore, 2)
	n, _ := reader.Read(rows)
	require.Equal(t, 2, n)
	assert.Equal(t, data, rows)
}

// Test empty exports still produce a valid file
func TestWriteEmptyParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAnalysisRunsParquet(nil, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "even an empty file carries the footer")
}

// Test unwritable output paths fail
func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteAnalysisRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

// Test run record conversion
func TestConvertRunRecords(t *testing.T) {
	end := time.Now().UTC()
	duration := int64(42)
	records := []schema.RunRecord{
		{
			RunID:      7,
			StartedAt:  end.Add(-time.Second),
			EndedAt:    &end,
			DurationMs: &duration,
			Kind:       schema.StaleKind,
			TotalRows:  10,
			Dropped:    1,
			Params:     `{"clusters":3}`,
		},
		{RunID: 8, StartedAt: end, Kind: schema.CollabKind},
	}

	runs := ConvertRunRecords(records)
	require.Len(t, runs, 2)

	assert.Equal(t, int64(7), runs[0].RunID)
	assert.Equal(t, "stale", runs[0].ReportKind)
	assert.Equal(t, int32(10), runs[0].TotalRows)
	assert.Equal(t, int32(1), runs[0].DroppedRows)
	require.NotNil(t, runs[0].ConfigParams)
	assert.Equal(t, `{"clusters":3}`, *runs[0].ConfigParams)

	// Empty params become a null column, not an empty string
	assert.Nil(t, runs[1].ConfigParams)
	assert.Nil(t, runs[1].EndTime)
}

// Test risk score record conversion
func TestConvertRiskScoreRecords(t *testing.T) {
	records := []schema.RiskScoreRecord{
		{RunID: 7, RowID: "alice", Score: 66.6, Level: schema.HighBucket},
	}
	scores := ConvertRiskScoreRecords(records)
	require.Len(t, scores, 1)
	assert.Equal(t, RowRiskScore{RunID: 7, RowID: "alice", RiskScore: 66.6, RiskLevel: "High"}, scores[0])

	assert.Empty(t, ConvertRiskScoreRecords(nil))
}
