// Package parquet provides data structures and functions for exporting run
// history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/prlens/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single analysis run with metadata.
// This struct maps to the prlens_runs database table.
type AnalysisRun struct {
	// RunID is the unique identifier for this analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the analysis began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// ReportKind is the report kind this run analyzed
	ReportKind string `parquet:"report_kind,snappy"`

	// TotalRows is the number of rows analyzed in this run
	TotalRows int32 `parquet:"total_rows,snappy"`

	// DroppedRows is the number of records discarded during extraction
	DroppedRows int32 `parquet:"dropped_rows,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RowRiskScore represents one persisted per-row risk score.
// This struct maps to the prlens_risk_scores database table.
type RowRiskScore struct {
	// RunID references the parent analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// RowID is the entity identifier the score belongs to
	RowID string `parquet:"row_id,snappy"`

	// RiskScore is the composite risk score in [0, 100]
	RiskScore float64 `parquet:"risk_score,snappy"`

	// RiskLevel is the bucket label for the score
	RiskLevel string `parquet:"risk_level,snappy"`
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the AnalysisRun struct tags
	writer := parquet.NewGenericWriter[AnalysisRun](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteRiskScoresParquet writes a slice of RowRiskScore structs to a Parquet file.
func WriteRiskScoresParquet(data []RowRiskScore, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the RowRiskScore struct tags
	writer := parquet.NewGenericWriter[RowRiskScore](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to AnalysisRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		run := AnalysisRun{
			RunID:         record.RunID,
			StartTime:     record.StartedAt,
			EndTime:       record.EndedAt,
			RunDurationMs: record.DurationMs,
			ReportKind:    string(record.Kind),
			TotalRows:     int32(record.TotalRows),
			DroppedRows:   int32(record.Dropped),
		}
		if record.Params != "" {
			params := record.Params
			run.ConfigParams = &params
		}
		result[i] = run
	}
	return result
}

// ConvertRiskScoreRecords converts schema.RiskScoreRecord to RowRiskScore for Parquet export.
func ConvertRiskScoreRecords(records []schema.RiskScoreRecord) []RowRiskScore {
	result := make([]RowRiskScore, len(records))
	for i, record := range records {
		result[i] = RowRiskScore{
			RunID:     record.RunID,
			RowID:     record.RowID,
			RiskScore: record.Score,
			RiskLevel: string(record.Level),
		}
	}
	return result
}
