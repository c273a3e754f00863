// Package agg computes grouped aggregates over feature tables, feeding the
// recommendation rules and the console summary.
package agg

import (
	"sort"

	"github.com/huangsam/prlens/schema"
)

// GroupBy summarizes rows per distinct value of a categorical column:
// member count, flagged-rate under the schema's flag rule, mean of the
// schema's primary metric, and mean risk when scores are supplied. Groups
// come back sorted by flagged-rate descending, then key for determinism.
func GroupBy(table *schema.FeatureTable, column string, risk *schema.RiskResult) []schema.GroupStat {
	if column == "" || table.Len() == 0 {
		return nil
	}

	type acc struct {
		count   int
		flagged int
		metric  float64
		risk    float64
	}
	groups := make(map[string]*acc)

	riskByRow := make(map[int]float64)
	if risk != nil {
		for _, rs := range risk.Scores {
			riskByRow[rs.Row] = rs.Value
		}
	}

	for i := range table.Rows {
		row := &table.Rows[i]
		key := row.Cat[column]
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}
		g.count++
		if table.Schema.Flag.Matches(row) {
			g.flagged++
		}
		g.metric += row.Num[table.Schema.PrimaryMetric]
		g.risk += riskByRow[i]
	}

	stats := make([]schema.GroupStat, 0, len(groups))
	for key, g := range groups {
		n := float64(g.count)
		stats = append(stats, schema.GroupStat{
			Key:         key,
			Count:       g.count,
			FlaggedRate: float64(g.flagged) / n,
			MeanMetric:  g.metric / n,
			MeanRisk:    g.risk / n,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].FlaggedRate != stats[j].FlaggedRate {
			return stats[i].FlaggedRate > stats[j].FlaggedRate
		}
		return stats[i].Key < stats[j].Key
	})
	return stats
}

// GroupAll computes grouped aggregates for every configured group column.
func GroupAll(table *schema.FeatureTable, risk *schema.RiskResult) map[string][]schema.GroupStat {
	if len(table.Schema.GroupColumns) == 0 {
		return nil
	}
	out := make(map[string][]schema.GroupStat, len(table.Schema.GroupColumns))
	for _, column := range table.Schema.GroupColumns {
		if stats := GroupBy(table, column, risk); stats != nil {
			out[column] = stats
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
