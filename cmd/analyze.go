package cmd

import (
	"time"

	"github.com/huangsam/prlens/core"
	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/outwriter"
	"github.com/huangsam/prlens/schema"
	"github.com/spf13/cobra"
)

// runAnalyze executes the full pipeline for the configured report kind and
// renders both the insights file and the console summary.
func runAnalyze() {
	start := time.Now()
	ow := outwriter.NewOutWriter()

	report, err := core.ExecuteAnalyze(rootCtx, cfg, storeManager)
	if err != nil {
		// The snapshot could not be loaded. Still leave a valid, minimal
		// insights file behind before exiting non-zero.
		failure := core.FailureReport(cfg.Kind, err)
		if werr := ow.WriteInsights(failure, cfg); werr != nil {
			contract.LogWarn("Failed to write failure report", werr)
		}
		contract.LogFatal("Cannot run analysis", err)
	}

	if err := ow.WriteInsights(report, cfg); err != nil {
		contract.LogFatal("Cannot write insights", err)
	}
	if err := ow.WriteSummary(report, cfg, time.Since(start)); err != nil {
		contract.LogFatal("Cannot write summary", err)
	}
}

// analyzeCmd groups the per-report analysis subcommands.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run ML-style analysis on a repository activity snapshot",
	Long: `Analyze a JSON snapshot of repository activity with the full insight pipeline:
feature extraction, z-score normalization, k-means clustering, weighted risk
scoring, IQR anomaly detection and rule-based recommendations.

Each subcommand expects the snapshot layout of its report kind. Results are
written to <output>/ml_insights.json and summarized on the console.

Examples:
  # Cluster stale PRs with automatic k selection
  prlens analyze stale --input stale_prs.json

  # Force three clusters and show the risk distribution
  prlens analyze leadtime --input leadtime.json --clusters 3 --visualize

  # Track runs in SQLite while analyzing
  prlens analyze collab --input collab.json --run-backend sqlite`,
}

// analyzeStaleCmd analyzes stale PR snapshots.
var analyzeStaleCmd = &cobra.Command{
	Use:   "stale",
	Short: "Find abandonment patterns in stale pull requests",
	Long: `Analyze a stale PR snapshot to find abandonment patterns.

Groups stale PRs by inactivity, size and engagement, scores each PR's
abandonment risk, and flags statistical outliers such as PRs that have been
inactive far longer than their peers.

Examples:
  prlens analyze stale --input stale_prs.json
  prlens analyze stale --input stale_prs.json --clusters 4 --verbose`,
	PreRunE: sharedSetupFor(string(schema.StaleKind)),
	Run: func(_ *cobra.Command, _ []string) {
		runAnalyze()
	},
}

// analyzeLeadtimeCmd analyzes merge lead time snapshots.
var analyzeLeadtimeCmd = &cobra.Command{
	Use:   "leadtime",
	Short: "Find bottleneck patterns in merge lead times",
	Long: `Analyze a lead time snapshot to find merge bottlenecks.

Clusters merged PRs by lead time, size and review activity, scores delay
risk, and surfaces PRs whose lead times are statistical outliers.

Examples:
  prlens analyze leadtime --input leadtime.json
  prlens analyze leadtime --input leadtime.json --visualize`,
	PreRunE: sharedSetupFor(string(schema.LeadTimeKind)),
	Run: func(_ *cobra.Command, _ []string) {
		runAnalyze()
	},
}

// analyzeCollabCmd analyzes reviewer collaboration snapshots.
var analyzeCollabCmd = &cobra.Command{
	Use:   "collab",
	Short: "Find collaboration patterns across reviewers and authors",
	Long: `Analyze a collaboration snapshot to find reviewer isolation.

Groups contributors by review activity and network diversity, scores
isolation risk, and recommends interventions for siloed reviewers.

Examples:
  prlens analyze collab --input collab.json`,
	PreRunE: sharedSetupFor(string(schema.CollabKind)),
	Run: func(_ *cobra.Command, _ []string) {
		runAnalyze()
	},
}

// analyzeReadinessCmd analyzes merge readiness snapshots.
var analyzeReadinessCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Find readiness gaps across merge quality metrics",
	Long: `Analyze a merge readiness snapshot to find quality gaps.

Clusters readiness metrics, scores each metric's shortfall against its
target, and flags metrics whose values are statistical outliers.

Examples:
  prlens analyze readiness --input readiness.json`,
	PreRunE: sharedSetupFor(string(schema.ReadinessKind)),
	Run: func(_ *cobra.Command, _ []string) {
		runAnalyze()
	},
}

// analyzeSentimentCmd analyzes review sentiment snapshots.
var analyzeSentimentCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Find sentiment patterns in review discussions",
	Long: `Analyze a review sentiment snapshot to find negative discussion patterns.

Clusters PRs by sentiment and discussion volume, scores friction risk, and
distinguishes genuinely neutral discussions from PRs with no sentiment
signal at all.

Examples:
  prlens analyze sentiment --input sentiment.json`,
	PreRunE: sharedSetupFor(string(schema.SentimentKind)),
	Run: func(_ *cobra.Command, _ []string) {
		runAnalyze()
	},
}

// analyzeLifecycleCmd analyzes PR lifecycle snapshots.
var analyzeLifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Find stage bottlenecks in the PR lifecycle",
	Long: `Analyze a lifecycle snapshot to find per-stage bottlenecks.

Clusters PRs by time spent in each lifecycle stage (cycle, review, idle),
scores stage-imbalance risk, and flags PRs stuck far longer than their
peers in any single stage.

Examples:
  prlens analyze lifecycle --input lifecycle.json`,
	PreRunE: sharedSetupFor(string(schema.LifecycleKind)),
	Run: func(_ *cobra.Command, _ []string) {
		runAnalyze()
	},
}
