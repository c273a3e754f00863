package runstore

import (
	"errors"
	"fmt"

	"github.com/huangsam/prlens/internal/parquet"
)

// ExecuteRunsExport exports run history and risk scores to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run tracking is not configured")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total risk score rows: %d\n", status.TotalRows)

	runs, err := store.ListRuns(int(status.TotalRuns))
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	scores, err := store.ListRiskScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve risk scores: %w", err)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetScores := parquet.ConvertRiskScoreRecords(scores)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	scoresFile := outputFile + ".risk_scores.parquet"
	if err := parquet.WriteRiskScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write risk scores: %w", err)
	}
	fmt.Printf("Exported %d risk score records to: %s\n", len(parquetScores), scoresFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
