// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/prlens/schema"
)

// RunStore defines the interface for tracking analysis runs and storing
// per-row risk scores. This allows the store to be mocked for testing.
type RunStore interface {
	// BeginRun creates a new analysis run and returns its unique ID
	BeginRun(startTime time.Time, kind schema.ReportKind, configParams map[string]any) (int64, error)

	// EndRun updates the analysis run with completion data
	EndRun(runID int64, endTime time.Time, totalRows, droppedRows int) error

	// RecordRiskScores stores the final risk scores for a run
	RecordRiskScores(runID int64, scores []schema.RiskScore) error

	// ListRuns returns the most recent runs, newest first
	ListRuns(limit int) ([]schema.RunRecord, error)

	// ListRiskScores returns all persisted risk scores ordered by run
	ListRiskScores() ([]schema.RiskScoreRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// Clear removes all persisted runs and scores
	Clear() error

	// Close closes the underlying connection
	Close() error
}

// StoreManager provides access to the configured run store.
type StoreManager interface {
	GetRunStore() RunStore
}
