package schema

import "math"

// maxDen guards ratio denominators against division by zero.
func maxDen(v float64) float64 {
	return math.Max(v, 1)
}

// SchemaFor returns the feature schema for a report kind, or nil when the
// kind is unknown.
func SchemaFor(kind ReportKind) *FeatureSchema {
	switch kind {
	case StaleKind:
		return staleSchema()
	case LeadTimeKind:
		return leadTimeSchema()
	case CollabKind:
		return collabSchema()
	case ReadinessKind:
		return readinessSchema()
	case SentimentKind:
		return sentimentSchema()
	case LifecycleKind:
		return lifecycleSchema()
	default:
		return nil
	}
}

// staleSchema maps the abandoned/stale PR audit snapshot. Rows are pull
// requests keyed by PR number.
func staleSchema() *FeatureSchema {
	return &FeatureSchema{
		Kind:        StaleKind,
		EntityPath:  "detailed_analysis.pull_requests",
		EntityLabel: "pull requests",
		Fields: []Field{
			{Name: "pr_number", Path: "number", Type: NumberField, Identity: true},
			{Name: "title_length", Path: "title", Type: LengthField, Default: 0.0},
			{Name: "author", Path: "user.login", Type: StringField, Default: "unknown"},
			{Name: "state", Path: "state", Type: StringField, Default: "unknown"},
			{Name: "created_hour", Path: "created_at", Type: HourField, Default: 0.0},
			{Name: "created_day_of_week", Path: "created_at", Type: WeekdayField, Default: 0.0},
			{Name: "inactive_days", Path: "inactivity_duration.days", Type: NumberField, Default: 0.0},
			{Name: "inactive_hours", Path: "inactivity_duration.total_hours", Type: NumberField, Default: 0.0},
			{Name: "reason_category", Path: "inactivity_analysis.category", Type: StringField, Default: "unknown"},
			{Name: "priority", Path: "inactivity_analysis.priority", Type: StringField, Default: "low"},
			{Name: "review_count", Path: "details.review_count", Type: NumberField, Default: 0.0},
			{Name: "comment_count", Path: "details.comment_count", Type: NumberField, Default: 0.0},
			{Name: "commit_count", Path: "details.commit_count", Type: NumberField, Default: 0.0},
			{Name: "failing_checks", Path: "details.failing_checks", Type: NumberField, Default: 0.0},
			{Name: "total_checks", Path: "details.total_checks", Type: NumberField, Default: 0.0},
			{Name: "is_draft", Path: "draft", Type: BoolField, Default: false},
			{Name: "additions", Path: "additions", Type: NumberField, Default: 0.0},
			{Name: "deletions", Path: "deletions", Type: NumberField, Default: 0.0},
			{Name: "changed_files", Path: "changed_files", Type: NumberField, Default: 0.0},
			{Name: "repository", Path: "repository_name", Type: StringField, Default: "unknown"},
		},
		Derived: []DerivedField{
			{Name: "total_changes", Compute: func(r *FeatureRow) float64 {
				return r.Value("additions") + r.Value("deletions")
			}},
			{Name: "check_failure_rate", Compute: func(r *FeatureRow) float64 {
				return r.Value("failing_checks") / maxDen(r.Value("total_checks"))
			}},
			{Name: "engagement_score", Compute: func(r *FeatureRow) float64 {
				return r.Value("review_count") + r.Value("comment_count")
			}},
		},
		NumericColumns: []string{
			"inactive_days", "inactive_hours", "review_count", "comment_count",
			"commit_count", "check_failure_rate", "total_changes", "engagement_score",
		},
		ClusterFeatures: []string{
			"inactive_days", "engagement_score", "total_changes",
			"check_failure_rate", "commit_count",
		},
		MetricColumns: []string{"inactive_days", "total_changes", "engagement_score"},
		RiskFactors: map[string]float64{
			"inactive_days":      0.3,
			"check_failure_rate": 0.25,
			"engagement_score":   -0.2, // higher engagement reduces risk
			"total_changes":      0.1,
			"commit_count":       -0.05,
		},
		Flag:          FlagRule{Column: "reason_category", Values: []string{"abandoned", "stale", "failing_ci"}},
		FlagThreshold: 0.7,
		Labels: []LabelRule{
			{Feature: "inactive_days", High: 60, Mid: 30, Names: [3]string{"Long-term inactive", "Medium-term inactive", "Recently inactive"}},
			{Feature: "engagement_score", High: 5, Mid: 2, Names: [3]string{"High engagement", "Moderate engagement", "Low engagement"}},
			{Feature: "total_changes", High: 1000, Mid: 100, Names: [3]string{"Large changes", "Medium changes", "Small changes"}},
		},
		GroupColumns:  []string{"author", "repository"},
		PrimaryMetric: "inactive_days",
	}
}

// leadTimeSchema maps the commit-to-merge lead time snapshot. Upstream key
// names are upper-cased in this report family.
func leadTimeSchema() *FeatureSchema {
	return &FeatureSchema{
		Kind:        LeadTimeKind,
		EntityPath:  "detailed_analysis.pull_requests",
		EntityLabel: "merged pull requests",
		Fields: []Field{
			{Name: "pr_number", Path: "NUMBER", Type: NumberField, Identity: true},
			{Name: "author", Path: "AUTHOR", Type: StringField, Default: "unknown"},
			{Name: "repository", Path: "REPOSITORY", Type: StringField, Default: "unknown"},
			{Name: "lead_time_hours", Path: "LEAD_TIME_HOURS", Type: NumberField, Default: 0.0},
			{Name: "lead_time_days", Path: "LEAD_TIME_DAYS", Type: NumberField, Default: 0.0},
			{Name: "title_length", Path: "TITLE", Type: LengthField, Default: 0.0},
			{Name: "merge_hour", Path: "MERGE_TIMESTAMP", Type: HourField, Default: 0.0},
			{Name: "merge_day_of_week", Path: "MERGE_TIMESTAMP", Type: WeekdayField, Default: 0.0},
			{Name: "commit_count", Path: "COMMIT_COUNT", Type: NumberField, Default: 0.0},
			{Name: "review_count", Path: "REVIEW_COUNT", Type: NumberField, Default: 0.0},
		},
		Derived: []DerivedField{
			{Name: "hours_per_commit", Compute: func(r *FeatureRow) float64 {
				return r.Value("lead_time_hours") / maxDen(r.Value("commit_count"))
			}},
		},
		NumericColumns: []string{
			"lead_time_hours", "lead_time_days", "title_length",
			"commit_count", "review_count", "hours_per_commit",
		},
		ClusterFeatures: []string{"lead_time_hours", "commit_count", "review_count", "title_length"},
		MetricColumns:   []string{"lead_time_hours", "hours_per_commit"},
		RiskFactors: map[string]float64{
			"lead_time_hours":  0.45,
			"hours_per_commit": 0.25,
			"review_count":     -0.15,
			"title_length":     0.05,
		},
		Flag:          FlagRule{Column: "lead_time_hours", Min: 168}, // a week from first commit to merge
		FlagThreshold: 0.5,
		Labels: []LabelRule{
			{Feature: "lead_time_hours", High: 168, Mid: 48, Names: [3]string{"Slow delivery", "Steady delivery", "Fast delivery"}},
			{Feature: "review_count", High: 4, Mid: 1, Names: [3]string{"Heavily reviewed", "Reviewed", "Lightly reviewed"}},
		},
		GroupColumns:  []string{"author", "repository"},
		PrimaryMetric: "lead_time_hours",
	}
}

// collabSchema maps the developer collaboration matrix snapshot. The entity
// is a map keyed by username rather than an array.
func collabSchema() *FeatureSchema {
	return &FeatureSchema{
		Kind:        CollabKind,
		EntityPath:  "detailed_analysis.collaboration_matrix.user_stats",
		EntityLabel: "contributors",
		KeyField:    "user",
		Fields: []Field{
			{Name: "user", Path: "user", Type: StringField, Identity: true},
			{Name: "prs_created", Path: "prs_created", Type: NumberField, Default: 0.0},
			{Name: "reviews_given", Path: "reviews_given", Type: NumberField, Default: 0.0},
			{Name: "comments_made", Path: "comments_made", Type: NumberField, Default: 0.0},
			{Name: "collaborators", Path: "collaborators", Type: NumberField, Default: 0.0},
			{Name: "diversity_score", Path: "scores.diversity_score", Type: NumberField, Default: 0.0},
			{Name: "activity_score", Path: "scores.activity_score", Type: NumberField, Default: 0.0},
			{Name: "intensity_score", Path: "scores.intensity_score", Type: NumberField, Default: 0.0},
			{Name: "collaboration_score", Path: "scores.collaboration_score", Type: NumberField, Default: 0.0},
		},
		Derived: []DerivedField{
			{Name: "review_to_pr_ratio", Compute: func(r *FeatureRow) float64 {
				return r.Value("reviews_given") / maxDen(r.Value("prs_created"))
			}},
			{Name: "comment_to_pr_ratio", Compute: func(r *FeatureRow) float64 {
				return r.Value("comments_made") / maxDen(r.Value("prs_created"))
			}},
			{Name: "collaboration_efficiency", Compute: func(r *FeatureRow) float64 {
				return r.Value("collaborators") / maxDen(r.Value("activity_score"))
			}},
		},
		NumericColumns: []string{
			"prs_created", "reviews_given", "comments_made", "collaborators",
			"diversity_score", "activity_score", "collaboration_score",
		},
		ClusterFeatures: []string{"collaboration_score", "activity_score", "diversity_score", "reviews_given"},
		MetricColumns:   []string{"collaboration_score", "activity_score", "diversity_score"},
		RiskFactors: map[string]float64{
			// Isolation risk: busy contributors who rarely review or reach
			// beyond their own PRs.
			"prs_created":         0.25,
			"collaboration_score": -0.35,
			"diversity_score":     -0.2,
			"reviews_given":       -0.15,
			"activity_score":      0.1,
		},
		Flag:          FlagRule{Column: "collaboration_score", Min: 5, Below: true},
		FlagThreshold: 0.7,
		Labels: []LabelRule{
			{Feature: "collaboration_score", High: 15, Mid: 8, Names: [3]string{"High collaborators", "Moderate collaborators", "Emerging collaborators"}},
			{Feature: "activity_score", High: 20, Mid: 10, Names: [3]string{"Highly active", "Moderately active", "Low activity"}},
			{Feature: "diversity_score", High: 5, Mid: 2, Names: [3]string{"Broad network", "Moderate network", "Limited network"}},
		},
		GroupColumns:  nil, // rows are already per-user
		PrimaryMetric: "collaboration_score",
	}
}

// readinessSchema maps the merge readiness quality rollups. Rows are metric
// family summaries rather than individual PRs.
func readinessSchema() *FeatureSchema {
	return &FeatureSchema{
		Kind:        ReadinessKind,
		EntityPath:  "detailed_analysis.metrics",
		EntityLabel: "quality metrics",
		Fields: []Field{
			{Name: "metric_type", Path: "metric_type", Type: StringField, Identity: true},
			{Name: "avg_value", Path: "avg_value", Type: NumberField, Default: 0.0},
			{Name: "median_value", Path: "median_value", Type: NumberField, Default: 0.0},
			{Name: "p75_value", Path: "p75_value", Type: NumberField, Default: 0.0},
			{Name: "p95_value", Path: "p95_value", Type: NumberField, Default: 0.0},
			{Name: "min_value", Path: "min_value", Type: NumberField, Default: 0.0},
			{Name: "max_value", Path: "max_value", Type: NumberField, Default: 0.0},
			{Name: "total_samples", Path: "total_samples", Type: NumberField, Default: 0.0},
		},
		Derived: []DerivedField{
			{Name: "tail_ratio", Compute: func(r *FeatureRow) float64 {
				return r.Value("p95_value") / maxDen(r.Value("median_value"))
			}},
		},
		NumericColumns: []string{
			"avg_value", "median_value", "p75_value", "p95_value",
			"min_value", "max_value",
		},
		ClusterFeatures: []string{"avg_value", "median_value", "p75_value", "p95_value"},
		MetricColumns:   []string{"avg_value", "p95_value"},
		RiskFactors: map[string]float64{
			"avg_value":  0.3,
			"p95_value":  0.35,
			"tail_ratio": 0.25,
			"min_value":  -0.1,
		},
		Flag:          FlagRule{Column: "tail_ratio", Min: 3},
		FlagThreshold: 0.5,
		Labels: []LabelRule{
			{Feature: "avg_value", High: 100, Mid: 24, Names: [3]string{"Slow metric family", "Moderate metric family", "Fast metric family"}},
			{Feature: "tail_ratio", High: 3, Mid: 1.5, Names: [3]string{"Heavy tail", "Moderate tail", "Tight spread"}},
		},
		GroupColumns:  nil,
		PrimaryMetric: "avg_value",
	}
}

// sentimentSchema maps the comment sentiment and conflict detection
// snapshot. A sentiment score of exactly 0 is ambiguous upstream (neutral
// vs. no signal), so has_sentiment is carried as its own feature.
func sentimentSchema() *FeatureSchema {
	return &FeatureSchema{
		Kind:        SentimentKind,
		EntityPath:  "detailed_analysis.pull_requests",
		EntityLabel: "pull requests",
		Fields: []Field{
			{Name: "pr_number", Path: "number", Type: NumberField, Identity: true},
			{Name: "author", Path: "user.login", Type: StringField, Default: "unknown"},
			{Name: "state", Path: "state", Type: StringField, Default: "unknown"},
			{Name: "repository", Path: "repository_name", Type: StringField, Default: "unknown"},
			{Name: "total_comments", Path: "total_comments", Type: NumberField, Default: 0.0},
			{Name: "total_reviews", Path: "total_reviews", Type: NumberField, Default: 0.0},
			{Name: "days_open", Path: "days_open", Type: NumberField, Default: 0.0},
			{Name: "sentiment_score", Path: "sentiment.score", Type: NumberField, Default: 0.0},
			{Name: "has_sentiment", Path: "sentiment.score", Type: PresentField, Default: false},
			{Name: "conflict_count", Path: "conflicts.count", Type: NumberField, Default: 0.0},
			{Name: "is_merged", Path: "merged_at", Type: PresentField, Default: false},
		},
		Derived: []DerivedField{
			{Name: "comments_per_day", Compute: func(r *FeatureRow) float64 {
				return r.Value("total_comments") / maxDen(r.Value("days_open"))
			}},
		},
		NumericColumns: []string{
			"total_comments", "total_reviews", "days_open",
			"sentiment_score", "conflict_count", "comments_per_day",
		},
		ClusterFeatures: []string{"total_comments", "total_reviews", "days_open", "sentiment_score", "conflict_count"},
		MetricColumns:   []string{"sentiment_score", "conflict_count", "days_open"},
		RiskFactors: map[string]float64{
			"conflict_count":  0.35,
			"sentiment_score": -0.3, // negative sentiment raises risk
			"days_open":       0.15,
			"total_comments":  0.1,
			"total_reviews":   -0.1,
		},
		Flag:          FlagRule{Column: "conflict_count", Min: 1},
		FlagThreshold: 0.5,
		Labels: []LabelRule{
			{Feature: "conflict_count", High: 3, Mid: 1, Names: [3]string{"Conflict heavy", "Occasional conflict", "Conflict free"}},
			{Feature: "sentiment_score", High: 0.3, Mid: -0.1, Names: [3]string{"Positive tone", "Neutral tone", "Negative tone"}},
			{Feature: "days_open", High: 30, Mid: 7, Names: [3]string{"Long running", "Typical duration", "Short lived"}},
		},
		GroupColumns:  []string{"author", "repository"},
		PrimaryMetric: "conflict_count",
	}
}

// lifecycleSchema maps the PR lifecycle timing snapshot.
func lifecycleSchema() *FeatureSchema {
	return &FeatureSchema{
		Kind:        LifecycleKind,
		EntityPath:  "detailed_analysis.pull_requests",
		EntityLabel: "pull requests",
		Fields: []Field{
			{Name: "pr_number", Path: "NUMBER", Type: NumberField, Identity: true},
			{Name: "author", Path: "AUTHOR", Type: StringField, Default: "unknown"},
			{Name: "repository", Path: "REPOSITORY", Type: StringField, Default: "unknown"},
			{Name: "cycle_time_hours", Path: "CYCLE_TIME_HOURS", Type: NumberField, Default: 0.0},
			{Name: "review_time_hours", Path: "REVIEW_TIME_HOURS", Type: NumberField, Default: 0.0},
			{Name: "idle_time_hours", Path: "IDLE_TIME_HOURS", Type: NumberField, Default: 0.0},
			{Name: "comment_time_hours", Path: "TIME_TO_FIRST_COMMENT_HOURS", Type: NumberField, Default: 0.0},
			{Name: "review_count", Path: "REVIEW_COUNT", Type: NumberField, Default: 0.0},
			{Name: "comment_count", Path: "COMMENT_COUNT", Type: NumberField, Default: 0.0},
			{Name: "is_merged", Path: "MERGED_AT", Type: PresentField, Default: false},
			{Name: "day_of_week", Path: "CREATED_AT", Type: WeekdayField, Default: 0.0},
			{Name: "hour_of_day", Path: "CREATED_AT", Type: HourField, Default: 0.0},
		},
		Derived: []DerivedField{
			{Name: "is_weekend", Compute: func(r *FeatureRow) float64 {
				if r.Value("day_of_week") >= 5 {
					return 1
				}
				return 0
			}},
			{Name: "review_efficiency", Compute: func(r *FeatureRow) float64 {
				if ct := r.Value("cycle_time_hours"); ct > 0 {
					return r.Value("review_time_hours") / ct
				}
				return 0
			}},
			{Name: "idle_ratio", Compute: func(r *FeatureRow) float64 {
				if ct := r.Value("cycle_time_hours"); ct > 0 {
					return r.Value("idle_time_hours") / ct
				}
				return 0
			}},
		},
		NumericColumns: []string{
			"cycle_time_hours", "review_time_hours", "idle_time_hours",
			"comment_time_hours", "review_count", "comment_count",
		},
		ClusterFeatures: []string{"cycle_time_hours", "review_time_hours", "idle_time_hours", "review_count", "comment_count"},
		MetricColumns:   []string{"cycle_time_hours", "review_time_hours", "idle_time_hours"},
		RiskFactors: map[string]float64{
			"cycle_time_hours": 0.3,
			"idle_ratio":       0.25,
			"review_count":     -0.15,
			"comment_count":    0.1,
			"is_merged":        -0.2,
		},
		Flag:          FlagRule{Column: "idle_ratio", Min: 0.5},
		FlagThreshold: 0.5,
		Labels: []LabelRule{
			{Feature: "cycle_time_hours", High: 168, Mid: 48, Names: [3]string{"Slow cycle", "Typical cycle", "Fast cycle"}},
			{Feature: "idle_time_hours", High: 72, Mid: 24, Names: [3]string{"Mostly idle", "Some idle time", "Continuously active"}},
			{Feature: "review_count", High: 4, Mid: 1, Names: [3]string{"Heavily reviewed", "Reviewed", "Lightly reviewed"}},
		},
		GroupColumns:  []string{"author", "repository"},
		PrimaryMetric: "cycle_time_hours",
	}
}
