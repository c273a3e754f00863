// Package schema has configs, models and report definitions for all parts of prlens.
package schema

import "time"

// Field declares one feature the extractor must produce for every row.
// Path is a dot-separated route into the raw record; when the path is
// absent or mistyped the declared Default is substituted instead.
type Field struct {
	Name     string    // Canonical feature name
	Path     string    // Dot-separated source path inside the record
	Type     FieldType // How the raw value is read and coerced
	Default  any       // Substituted when the path is absent or unparsable
	Identity bool      // Row is dropped when this field is unrecoverable
}

// DerivedField is computed from already-extracted features, after primary
// extraction. Compute receives the finished row so denominators can be
// guarded with max(den, 1).
type DerivedField struct {
	Name    string
	Compute func(row *FeatureRow) float64
}

// FlagRule classifies a row as "flagged" (abandoned, conflicted, isolated)
// for cluster and aggregate rate computations. When Values is non-empty the
// rule matches a categorical column by membership; otherwise it matches a
// numeric column against Min (inclusive), or strictly below Min when Below
// is set.
type FlagRule struct {
	Column string
	Values []string
	Min    float64
	Below  bool
}

// Matches reports whether a row satisfies the flag rule.
func (f FlagRule) Matches(row *FeatureRow) bool {
	if f.Column == "" {
		return false
	}
	if len(f.Values) > 0 {
		got := row.Cat[f.Column]
		for _, v := range f.Values {
			if got == v {
				return true
			}
		}
		return false
	}
	v := row.Value(f.Column)
	if f.Below {
		return v < f.Min
	}
	return v >= f.Min
}

// LabelRule turns one centroid statistic into a qualitative phrase.
// Thresholds are checked high-to-low: value > High picks Names[0],
// value > Mid picks Names[1], anything else Names[2].
type LabelRule struct {
	Feature string
	High    float64
	Mid     float64
	Names   [3]string
}

// FeatureSchema is the contract boundary between one report snapshot layout
// and the shared analysis engine. Each report kind supplies its own schema;
// the engine never reaches into raw JSON directly.
type FeatureSchema struct {
	Kind        ReportKind
	EntityPath  string // Dot-separated path to the record array (or keyed map)
	EntityLabel string // Human name for the records, e.g. "pull requests"
	KeyField    string // When EntityPath holds a map, map keys land in this field

	Fields  []Field
	Derived []DerivedField

	NumericColumns  []string           // Columns rescaled by the normalizer
	ClusterFeatures []string           // Feature subset fed to k-means
	MetricColumns   []string           // Columns scanned for anomalies
	RiskFactors     map[string]float64 // Factor name -> signed weight

	Flag          FlagRule    // What counts as a flagged row
	FlagThreshold float64     // Cluster flagged-rate that triggers a recommendation
	Labels        []LabelRule // Centroid labeling rules
	GroupColumns  []string    // Categorical columns aggregated for rules (author, repository)
	PrimaryMetric string      // Headline metric for summaries and group stats
}

// FeatureRow is the flattened projection of one record onto a FeatureSchema.
// Every declared field is present; Defaulted records which fields fell back
// to their schema default so "no signal" stays distinguishable from a
// literal zero.
type FeatureRow struct {
	ID        string
	Num       map[string]float64
	Cat       map[string]string
	Defaulted map[string]bool
}

// Value returns the numeric feature by name, or 0 when absent.
func (r *FeatureRow) Value(name string) float64 {
	return r.Num[name]
}

// FeatureTable is an ordered sequence of rows sharing one schema.
type FeatureTable struct {
	Schema  *FeatureSchema
	Rows    []FeatureRow
	Dropped int // Records discarded because their identity field was unrecoverable
}

// Len returns the number of rows in the table.
func (t *FeatureTable) Len() int { return len(t.Rows) }

// Column collects one numeric column across all rows, in row order.
func (t *FeatureTable) Column(name string) []float64 {
	out := make([]float64, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Rows[i].Num[name]
	}
	return out
}

// ScalerParams retains the fit parameters of one normalized column.
type ScalerParams struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// NormalizedTable is a FeatureTable whose configured numeric columns have
// been rescaled to zero mean and unit variance. Rows are copies; the source
// table is never mutated.
type NormalizedTable struct {
	Schema  *FeatureSchema
	Rows    []FeatureRow
	Columns []string
	Params  map[string]ScalerParams
}

// Len returns the number of rows in the table.
func (t *NormalizedTable) Len() int { return len(t.Rows) }

// Cluster is one k-means partition with a human-readable description
// derived from fixed centroid thresholds.
type Cluster struct {
	ID              int                `json:"cluster_id"`
	Members         []int              `json:"members"`
	Size            int                `json:"size"`
	Centroid        map[string]float64 `json:"centroid"`
	Label           string             `json:"label"`
	Characteristics []string           `json:"characteristics"`
	FlaggedRate     float64            `json:"flagged_rate"`
}

// ClusterResult is the full output of the cluster engine. A degenerate run
// (too few rows, internal failure) yields an empty cluster list and is not
// an error.
type ClusterResult struct {
	Clusters    []Cluster `json:"clusters"`
	Assignments []int     `json:"assignments"`
	OptimalK    int       `json:"optimal_k"`
	AutoK       bool      `json:"auto_k"`
	Silhouette  float64   `json:"silhouette_score"`
	Inertia     float64   `json:"inertia"`
}

// RiskScore is the bounded composite score for one row.
type RiskScore struct {
	Row    int        `json:"row"`
	ID     string     `json:"id"`
	Value  float64    `json:"risk_score"`
	Bucket RiskBucket `json:"risk_level"`
}

// RiskResult holds all row scores plus the bucket distribution.
type RiskResult struct {
	Scores       []RiskScore        `json:"scores"`
	Distribution map[RiskBucket]int `json:"risk_distribution"`
	HighRisk     []RiskScore        `json:"high_risk_rows"`
	AvgByGroup   map[string]float64 `json:"avg_risk_by_group,omitempty"`
	Factors      map[string]float64 `json:"factors"`
	ColumnMax    map[string]float64 `json:"-"`
}

// Anomaly flags one statistically unusual row value.
type Anomaly struct {
	Row      int      `json:"row"`
	ID       string   `json:"id"`
	Metric   string   `json:"metric"`
	Value    float64  `json:"value"`
	Low      float64  `json:"expected_low"`
	High     float64  `json:"expected_high"`
	Severity Severity `json:"severity"`
}

// Recommendation is one prioritized, human-readable suggestion produced by
// the rule tables. Rows is a bounded list of affected row IDs.
type Recommendation struct {
	Category   string   `json:"category"`
	Priority   Priority `json:"priority"`
	Suggestion string   `json:"suggestion"`
	Rows       []string `json:"rows,omitempty"`
}

// GroupStat summarizes one categorical group (an author, a repository).
type GroupStat struct {
	Key         string  `json:"key"`
	Count       int     `json:"count"`
	FlaggedRate float64 `json:"flagged_rate"`
	MeanMetric  float64 `json:"mean_metric"`
	MeanRisk    float64 `json:"mean_risk"`
}

// ReportMetadata describes one analysis run.
type ReportMetadata struct {
	AnalysisTimestamp time.Time      `json:"analysis_timestamp"`
	ReportKind        ReportKind     `json:"report_kind"`
	TotalAnalyzed     int            `json:"total_analyzed"`
	DroppedRows       int            `json:"dropped_rows"`
	SchemaVersion     string         `json:"schema_version"`
	Status            string         `json:"status"`
	Error             string         `json:"error,omitempty"`
	ModelInfo         map[string]any `json:"model_info,omitempty"`
}

// InsightReport is the aggregate root exchanged with the rendering layer.
// Every section tolerates being empty.
type InsightReport struct {
	Metadata        ReportMetadata         `json:"metadata"`
	Clustering      ClusterResult          `json:"clustering_analysis"`
	Risk            RiskResult             `json:"risk_analysis"`
	Anomalies       []Anomaly              `json:"anomaly_detection"`
	Recommendations []Recommendation       `json:"recommendations"`
	Aggregates      map[string][]GroupStat `json:"aggregate_analysis,omitempty"`
}

// RunRecord is one persisted analysis run from the run store.
type RunRecord struct {
	RunID      int64
	StartedAt  time.Time
	EndedAt    *time.Time
	DurationMs *int64
	Kind       ReportKind
	TotalRows  int
	Dropped    int
	Params     string
}

// RiskScoreRecord is one persisted per-row risk score from the run store.
type RiskScoreRecord struct {
	RunID int64
	RowID string
	Score float64
	Level RiskBucket
}

// RunStoreStatus holds status information about the run store.
type RunStoreStatus struct {
	Backend   DatabaseBackend
	Location  string
	TotalRuns int
	TotalRows int
	LatestRun *time.Time
}
