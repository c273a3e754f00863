package core

import (
	"math"
	"testing"

	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRisk_Proportional(t *testing.T) {
	table := tableFromColumns(map[string][]float64{
		"slow": {0, 50, 100},
	})
	factors := map[string]float64{"slow": 0.5}

	result := ScoreRisk(table, factors)
	require.Len(t, result.Scores, 3)

	// score = 100 * 0.5 * (v / 100)
	assert.InDelta(t, 0, result.Scores[0].Value, 1e-9)
	assert.InDelta(t, 25, result.Scores[1].Value, 1e-9)
	assert.InDelta(t, 50, result.Scores[2].Value, 1e-9)

	assert.Equal(t, schema.LowBucket, result.Scores[0].Bucket)
	assert.Equal(t, schema.MediumBucket, result.Scores[1].Bucket)
	assert.Equal(t, schema.HighBucket, result.Scores[2].Bucket)
}

func TestScoreRisk_NegativeWeightsReduceRisk(t *testing.T) {
	table := tableFromColumns(map[string][]float64{
		"bad":  {100, 100},
		"good": {0, 100},
	})
	factors := map[string]float64{"bad": 0.8, "good": -0.5}

	result := ScoreRisk(table, factors)
	require.Len(t, result.Scores, 2)
	assert.Greater(t, result.Scores[0].Value, result.Scores[1].Value,
		"row with the protective signal scores lower")
	assert.InDelta(t, 80, result.Scores[0].Value, 1e-9)
	assert.InDelta(t, 30, result.Scores[1].Value, 1e-9)
}

func TestScoreRisk_ClippedToBounds(t *testing.T) {
	table := tableFromColumns(map[string][]float64{
		"a": {100, 0},
		"b": {100, 0},
	})
	// Sum of weights exceeds 1, so a max-value row would exceed 100 unclipped.
	factors := map[string]float64{"a": 0.9, "b": 0.8}

	result := ScoreRisk(table, factors)
	assert.Equal(t, 100.0, result.Scores[0].Value)
	assert.Equal(t, 0.0, result.Scores[1].Value)

	// Negative-dominated raws clip at 0.
	negTable := tableFromColumns(map[string][]float64{"good": {50, 100}})
	negResult := ScoreRisk(negTable, map[string]float64{"good": -1})
	for _, s := range negResult.Scores {
		assert.GreaterOrEqual(t, s.Value, 0.0)
	}
}

func TestScoreRisk_DegenerateColumns(t *testing.T) {
	table := tableFromColumns(map[string][]float64{
		"allzero": {0, 0, 0},
		"neg":     {-5, -3, -1},
	})
	factors := map[string]float64{"allzero": 0.5, "neg": 0.5, "missing": 0.5}

	result := ScoreRisk(table, factors)
	for _, s := range result.Scores {
		assert.Equal(t, 0.0, s.Value, "non-positive column max contributes nothing")
	}
}

func TestScoreRisk_DistributionAndHighRisk(t *testing.T) {
	table := tableFromColumns(map[string][]float64{
		"x": {5, 30, 60, 80, 100},
	})
	result := ScoreRisk(table, map[string]float64{"x": 1})

	total := 0
	for _, n := range result.Distribution {
		total += n
	}
	assert.Equal(t, 5, total, "every row lands in exactly one bucket")
	assert.Equal(t, 2, result.Distribution[schema.CriticalBucket])

	require.Len(t, result.HighRisk, 2, "only scores strictly above 75 are high risk")
	assert.Equal(t, 80.0, result.HighRisk[0].Value)
	assert.Equal(t, 100.0, result.HighRisk[1].Value)
}

func TestScoreRisk_NonFiniteValuesSkipped(t *testing.T) {
	table := tableFromColumns(map[string][]float64{
		"x": {math.NaN(), 100},
	})
	result := ScoreRisk(table, map[string]float64{"x": 1})
	assert.Equal(t, 0.0, result.Scores[0].Value)
	assert.Equal(t, 100.0, result.Scores[1].Value)
}

func TestScoreRisk_EmptyTable(t *testing.T) {
	table := &schema.FeatureTable{Schema: &schema.FeatureSchema{}}
	result := ScoreRisk(table, map[string]float64{"x": 1})
	assert.Empty(t, result.Scores)
	assert.Empty(t, result.HighRisk)
}

func TestGroupRiskAverages(t *testing.T) {
	table := tableFromColumns(map[string][]float64{
		"x": {0, 50, 100, 100},
	})
	table.Rows[0].Cat["author"] = "alice"
	table.Rows[1].Cat["author"] = "alice"
	table.Rows[2].Cat["author"] = "bob"
	// Row 3 has no author and is excluded.

	result := ScoreRisk(table, map[string]float64{"x": 1})
	avg := GroupRiskAverages(table, &result, "author")
	require.Len(t, avg, 2)
	assert.InDelta(t, 25, avg["alice"], 1e-9)
	assert.InDelta(t, 100, avg["bob"], 1e-9)

	assert.Nil(t, GroupRiskAverages(table, &result, ""))
}

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, clip(-5, 0, 100))
	assert.Equal(t, 100.0, clip(250, 0, 100))
	assert.Equal(t, 42.0, clip(42, 0, 100))
	assert.Equal(t, 0.0, clip(math.NaN(), 0, 100))
}
