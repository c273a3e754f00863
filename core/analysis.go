package core

import (
	"context"
	"time"

	"github.com/huangsam/prlens/core/agg"
	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/schema"
)

// ExecuteAnalyze runs the full analysis pipeline for one snapshot file and
// returns a complete report. The only hard failure is being unable to load
// and parse the snapshot; everything downstream degrades to empty report
// sections with a "degraded" status instead of an error.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.InsightReport, error) {
	def := schema.SchemaFor(cfg.Kind)

	// --- 1. Load and project the snapshot ---
	contract.LogVerbose(cfg.Verbose, "Loading snapshot from %s", cfg.InputPath)
	data, err := LoadSnapshot(cfg.InputPath)
	if err != nil {
		return nil, err
	}

	records, err := ExtractRecords(data, def.EntityPath, def.KeyField)
	if err != nil {
		// No records is a degraded run, not a failure. The report still
		// serializes with every section empty.
		contract.LogWarn("No records found in snapshot", err)
		return emptyReport(def, err.Error()), nil
	}

	// --- 2. Begin run tracking (if configured) ---
	var runID int64
	var store contract.RunStore
	if mgr != nil {
		store = mgr.GetRunStore()
	}
	if store != nil {
		runID, err = store.BeginRun(time.Now(), cfg.Kind, cfg.ConfigParams())
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
			runID = 0
		}
	}

	// --- 3. Extraction and normalization ---
	table := Extract(records, def)
	contract.LogVerbose(cfg.Verbose, "Extracted %d rows (%d dropped)", table.Len(), table.Dropped)

	report := analyzeTable(ctx, cfg, def, table)

	// --- 4. End run tracking ---
	if store != nil && runID > 0 {
		if err := store.RecordRiskScores(runID, report.Risk.Scores); err != nil {
			contract.LogWarn("Failed to record risk scores", err)
		}
		if err := store.EndRun(runID, time.Now(), table.Len(), table.Dropped); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return report, nil
}

// analyzeTable runs the model stages over an extracted feature table and
// assembles the report. Each stage tolerates degenerate input on its own, so
// no branching on row counts happens here.
func analyzeTable(ctx context.Context, cfg *contract.Config, def *schema.FeatureSchema, table *schema.FeatureTable) *schema.InsightReport {
	// --- 1. Normalize and cluster ---
	norm := Normalize(table, def.NumericColumns)
	clusters := ClusterRows(table, norm, cfg.Clusters, cfg.MaxK)
	contract.LogVerbose(cfg.Verbose, "Clustering produced k=%d (auto=%v, silhouette=%.3f)",
		clusters.OptimalK, clusters.AutoK, clusters.Silhouette)

	// --- 2. Risk scoring ---
	factors := cfg.EffectiveRiskFactors(def)
	risk := ScoreRisk(table, factors)
	if len(def.GroupColumns) > 0 {
		risk.AvgByGroup = GroupRiskAverages(table, &risk, def.GroupColumns[0])
	}

	// --- 3. Anomalies, aggregates, recommendations ---
	anomalies := DetectAnomalies(table, def.MetricColumns)
	groups := agg.GroupAll(table, &risk)
	recs := Synthesize(table, &clusters, &risk, anomalies, groups)

	status := "success"
	if table.Len() == 0 {
		status = "degraded"
	}

	return &schema.InsightReport{
		Metadata: schema.ReportMetadata{
			AnalysisTimestamp: time.Now().UTC(),
			ReportKind:        def.Kind,
			TotalAnalyzed:     table.Len(),
			DroppedRows:       table.Dropped,
			SchemaVersion:     schema.SchemaVersion,
			Status:            status,
			ModelInfo:         modelInfo(cfg, &clusters, factors),
		},
		Clustering:      clusters,
		Risk:            risk,
		Anomalies:       anomalies,
		Recommendations: recs,
		Aggregates:      groups,
	}
}

// modelInfo captures the model parameters that shaped this report, so a
// reader can tell an auto-selected k from a requested one.
func modelInfo(cfg *contract.Config, clusters *schema.ClusterResult, factors map[string]float64) map[string]any {
	return map[string]any{
		"algorithm":    "kmeans",
		"requested_k":  cfg.Clusters,
		"optimal_k":    clusters.OptimalK,
		"auto_k":       clusters.AutoK,
		"max_k":        cfg.MaxK,
		"risk_factors": factors,
	}
}

// emptyReport builds a valid degraded report with every section empty.
func emptyReport(def *schema.FeatureSchema, reason string) *schema.InsightReport {
	return &schema.InsightReport{
		Metadata: schema.ReportMetadata{
			AnalysisTimestamp: time.Now().UTC(),
			ReportKind:        def.Kind,
			SchemaVersion:     schema.SchemaVersion,
			Status:            "degraded",
			Error:             reason,
		},
		Clustering: schema.ClusterResult{
			Clusters:    []schema.Cluster{},
			Assignments: []int{},
		},
		Risk: schema.RiskResult{
			Scores:       []schema.RiskScore{},
			Distribution: map[schema.RiskBucket]int{},
			HighRisk:     []schema.RiskScore{},
		},
		Anomalies:       []schema.Anomaly{},
		Recommendations: []schema.Recommendation{},
	}
}

// FailureReport builds the minimal report written when the snapshot itself
// cannot be loaded. Callers still get a syntactically valid output file.
func FailureReport(kind schema.ReportKind, err error) *schema.InsightReport {
	r := emptyReport(&schema.FeatureSchema{Kind: kind}, err.Error())
	r.Metadata.Status = "failed"
	return r
}
