package core

import (
	"math"

	"github.com/huangsam/prlens/schema"
)

// highRiskCutoff bounds the explicit high-risk row list in the report.
const highRiskCutoff = 75.0

// ScoreRisk computes one bounded composite score per row from the signed
// factor weights. Each factor's raw value is divided by its column max
// (or contributes 0 when the max is not positive) before weighting; this
// min-free proportional scaling keeps a weight's sign in direct control of
// risk direction. Scores are scaled to [0,100] and clipped.
func ScoreRisk(table *schema.FeatureTable, factors map[string]float64) schema.RiskResult {
	result := schema.RiskResult{
		Scores:       make([]schema.RiskScore, 0, table.Len()),
		Distribution: make(map[schema.RiskBucket]int),
		HighRisk:     []schema.RiskScore{},
		Factors:      factors,
		ColumnMax:    make(map[string]float64, len(factors)),
	}

	for name := range factors {
		max := math.Inf(-1)
		for i := range table.Rows {
			if v := table.Rows[i].Num[name]; isFinite(v) && v > max {
				max = v
			}
		}
		if !isFinite(max) {
			max = 0
		}
		result.ColumnMax[name] = max
	}

	for i := range table.Rows {
		row := &table.Rows[i]

		var raw float64
		for name, weight := range factors {
			colMax := result.ColumnMax[name]
			if colMax <= 0 {
				continue // factor missing or degenerate contributes 0
			}
			v := row.Num[name]
			if !isFinite(v) {
				continue
			}
			raw += weight * (v / colMax)
		}

		score := clip(raw*100, 0, 100)
		rs := schema.RiskScore{
			Row:    i,
			ID:     row.ID,
			Value:  score,
			Bucket: schema.BucketFor(score),
		}
		result.Scores = append(result.Scores, rs)
		result.Distribution[rs.Bucket]++
		if score > highRiskCutoff {
			result.HighRisk = append(result.HighRisk, rs)
		}
	}

	return result
}

// GroupRiskAverages computes the mean risk score per value of a categorical
// column, matching the per-category risk rollup in the report output.
func GroupRiskAverages(table *schema.FeatureTable, result *schema.RiskResult, column string) map[string]float64 {
	if column == "" || len(result.Scores) == 0 {
		return nil
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rs := range result.Scores {
		key := table.Rows[rs.Row].Cat[column]
		if key == "" {
			continue
		}
		sums[key] += rs.Value
		counts[key]++
	}
	if len(sums) == 0 {
		return nil
	}
	out := make(map[string]float64, len(sums))
	for key, sum := range sums {
		out[key] = sum / float64(counts[key])
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
