package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/prlens/schema"
)

// Fixed rule thresholds for recommendation synthesis.
const (
	criticalCountThreshold = 5   // Critical-bucket rows above this fire "Immediate Action"
	anomalyRatioThreshold  = 0.1 // anomalies per row above this fire "Outlier Review"
	groupFlagThreshold     = 0.5 // per-author flagged-rate threshold
	repoFlagThreshold      = 0.4 // per-repository flagged-rate threshold
	largeChangeThreshold   = 500 // total_changes above this counts as a large PR
	largeFlagRateThreshold = 0.5 // flagged-rate among large PRs that fires the size rule
	minGroupSize           = 2   // groups smaller than this are ignored by group rules
	maxAffectedRows        = 10  // bound on affected-row references per recommendation
)

// Synthesize maps detected patterns to prioritized recommendations via
// independent rule tables. Each rule fires at most once; a rule whose
// required aggregate is absent is skipped, never an error.
func Synthesize(table *schema.FeatureTable, clusters *schema.ClusterResult, risk *schema.RiskResult, anomalies []schema.Anomaly, groups map[string][]schema.GroupStat) []schema.Recommendation {
	recs := []schema.Recommendation{}

	if r := clusterRule(table.Schema, clusters); r != nil {
		recs = append(recs, *r)
	}
	if r := criticalRiskRule(risk); r != nil {
		recs = append(recs, *r)
	}
	if r := anomalyRule(table.Len(), anomalies); r != nil {
		recs = append(recs, *r)
	}
	if r := sizeImpactRule(table); r != nil {
		recs = append(recs, *r)
	}
	if r := groupRule(groups, "author", groupFlagThreshold,
		"Team Management", schema.HighPriority,
		"%d authors show elevated %s rates. Consider mentoring or workflow training for these contributors."); r != nil {
		recs = append(recs, *r)
	}
	if r := groupRule(groups, "repository", repoFlagThreshold,
		"Repository Health", schema.HighPriority,
		"%d repositories show consistently elevated %s rates. Review CI/CD pipelines and contribution guidelines."); r != nil {
		recs = append(recs, *r)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) > priorityRank(recs[j].Priority)
	})
	return recs
}

// clusterRule fires when any cluster's flagged-rate exceeds the schema's
// fixed threshold, naming the worst cluster's characteristics.
func clusterRule(def *schema.FeatureSchema, clusters *schema.ClusterResult) *schema.Recommendation {
	if clusters == nil || len(clusters.Clusters) == 0 {
		return nil
	}

	var worst *schema.Cluster
	for i := range clusters.Clusters {
		c := &clusters.Clusters[i]
		if c.FlaggedRate <= def.FlagThreshold {
			continue
		}
		if worst == nil || c.FlaggedRate > worst.FlaggedRate {
			worst = c
		}
	}
	if worst == nil {
		return nil
	}

	return &schema.Recommendation{
		Category: "Workflow Optimization",
		Priority: schema.HighPriority,
		Suggestion: fmt.Sprintf(
			"Cluster of %d %s with characteristics [%s] shows a %.0f%% flagged rate. Consider targeted interventions.",
			worst.Size, def.EntityLabel, strings.Join(worst.Characteristics, ", "), worst.FlaggedRate*100),
	}
}

// criticalRiskRule fires when enough rows land in the Critical bucket.
func criticalRiskRule(risk *schema.RiskResult) *schema.Recommendation {
	if risk == nil {
		return nil
	}
	count := risk.Distribution[schema.CriticalBucket]
	if count <= criticalCountThreshold {
		return nil
	}

	var rows []string
	for _, rs := range risk.Scores {
		if rs.Bucket != schema.CriticalBucket {
			continue
		}
		rows = append(rows, rs.ID)
		if len(rows) == maxAffectedRows {
			break
		}
	}

	return &schema.Recommendation{
		Category: "Immediate Action",
		Priority: schema.CriticalPriority,
		Suggestion: fmt.Sprintf(
			"Found %d critical-risk rows requiring immediate attention.", count),
		Rows: rows,
	}
}

// anomalyRule fires when anomalies exceed a fixed proportion of rows.
func anomalyRule(totalRows int, anomalies []schema.Anomaly) *schema.Recommendation {
	if totalRows == 0 || len(anomalies) == 0 {
		return nil
	}
	if float64(len(anomalies)) <= anomalyRatioThreshold*float64(totalRows) {
		return nil
	}

	var rows []string
	seen := make(map[string]bool)
	for _, a := range anomalies {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		rows = append(rows, a.ID)
		if len(rows) == maxAffectedRows {
			break
		}
	}

	return &schema.Recommendation{
		Category: "Outlier Review",
		Priority: schema.MediumPriority,
		Suggestion: fmt.Sprintf(
			"Detected %d statistical outliers across %d rows. Review these for data quality issues or exceptional cases.",
			len(anomalies), totalRows),
		Rows: rows,
	}
}

// sizeImpactRule fires when large changes are disproportionately flagged.
// Skipped entirely for schemas without a total_changes feature.
func sizeImpactRule(table *schema.FeatureTable) *schema.Recommendation {
	hasSize := false
	for _, d := range table.Schema.Derived {
		if d.Name == "total_changes" {
			hasSize = true
			break
		}
	}
	if !hasSize {
		return nil
	}

	var large, largeFlagged int
	for i := range table.Rows {
		row := &table.Rows[i]
		if row.Num["total_changes"] < largeChangeThreshold {
			continue
		}
		large++
		if table.Schema.Flag.Matches(row) {
			largeFlagged++
		}
	}
	if large == 0 {
		return nil
	}
	if rate := float64(largeFlagged) / float64(large); rate <= largeFlagRateThreshold {
		return nil
	}

	return &schema.Recommendation{
		Category: "PR Guidelines",
		Priority: schema.MediumPriority,
		Suggestion: fmt.Sprintf(
			"Large PRs (>%d changes) have elevated abandonment rates. Encourage smaller, focused PRs.",
			largeChangeThreshold),
	}
}

// groupRule fires when enough members of any group (author, repository)
// exceed the flagged-rate threshold.
func groupRule(groups map[string][]schema.GroupStat, column string, threshold float64, category string, priority schema.Priority, format string) *schema.Recommendation {
	stats, ok := groups[column]
	if !ok {
		return nil
	}

	var offenders []string
	for _, g := range stats {
		if g.Count >= minGroupSize && g.FlaggedRate > threshold {
			offenders = append(offenders, g.Key)
		}
		if len(offenders) == maxAffectedRows {
			break
		}
	}
	if len(offenders) == 0 {
		return nil
	}

	return &schema.Recommendation{
		Category:   category,
		Priority:   priority,
		Suggestion: fmt.Sprintf(format, len(offenders), "flagged"),
		Rows:       offenders,
	}
}

func priorityRank(p schema.Priority) int {
	switch p {
	case schema.CriticalPriority:
		return 3
	case schema.HighPriority:
		return 2
	case schema.MediumPriority:
		return 1
	default:
		return 0
	}
}
