package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		score    float64
		expected RiskBucket
	}{
		{0, LowBucket},
		{24.9, LowBucket},
		{25, MediumBucket},
		{49.9, MediumBucket},
		{50, HighBucket},
		{74.9, HighBucket},
		{75, CriticalBucket},
		{100, CriticalBucket},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, BucketFor(tt.score), "score %v", tt.score)
	}
}

func TestFlagRule_Matches(t *testing.T) {
	t.Run("categorical membership", func(t *testing.T) {
		rule := FlagRule{Column: "category", Values: []string{"abandoned", "stale"}}

		row := &FeatureRow{Cat: map[string]string{"category": "abandoned"}}
		assert.True(t, rule.Matches(row))

		row.Cat["category"] = "active_discussion"
		assert.False(t, rule.Matches(row))
	})

	t.Run("numeric threshold", func(t *testing.T) {
		rule := FlagRule{Column: "lead_time_hours", Min: 168}

		row := &FeatureRow{Num: map[string]float64{"lead_time_hours": 200}}
		assert.True(t, rule.Matches(row))

		row.Num["lead_time_hours"] = 168
		assert.True(t, rule.Matches(row), "Min is inclusive")

		row.Num["lead_time_hours"] = 100
		assert.False(t, rule.Matches(row))
	})

	t.Run("below threshold", func(t *testing.T) {
		rule := FlagRule{Column: "collaboration_score", Min: 5, Below: true}

		row := &FeatureRow{Num: map[string]float64{"collaboration_score": 3}}
		assert.True(t, rule.Matches(row))

		row.Num["collaboration_score"] = 5
		assert.False(t, rule.Matches(row), "Below is strict")
	})

	t.Run("empty column never matches", func(t *testing.T) {
		rule := FlagRule{}
		row := &FeatureRow{Num: map[string]float64{"x": 1}}
		assert.False(t, rule.Matches(row))
	})
}

func TestSchemaFor(t *testing.T) {
	for _, kind := range AllReportKinds {
		def := SchemaFor(kind)
		require.NotNil(t, def, "schema for %s", kind)
		assert.Equal(t, kind, def.Kind)
		assert.NotEmpty(t, def.EntityPath)
		assert.NotEmpty(t, def.Fields)
		assert.NotEmpty(t, def.NumericColumns)
		assert.NotEmpty(t, def.ClusterFeatures)
		assert.NotEmpty(t, def.RiskFactors)
		assert.NotEmpty(t, def.PrimaryMetric)

		// Exactly one identity field per schema
		identities := 0
		for _, f := range def.Fields {
			if f.Identity {
				identities++
			}
		}
		assert.Equal(t, 1, identities, "kind %s", kind)
	}

	assert.Nil(t, SchemaFor("bogus"))
}

func TestSchemaFor_ClusterFeaturesAreNumeric(t *testing.T) {
	// Every cluster feature must be produced by extraction: either a numeric
	// column or a derived field.
	for _, kind := range AllReportKinds {
		def := SchemaFor(kind)
		known := make(map[string]bool)
		for _, f := range def.Fields {
			known[f.Name] = true
		}
		for _, d := range def.Derived {
			known[d.Name] = true
		}
		for _, feat := range def.ClusterFeatures {
			assert.True(t, known[feat], "kind %s cluster feature %s", kind, feat)
		}
		for name := range def.RiskFactors {
			assert.True(t, known[name], "kind %s risk factor %s", kind, name)
		}
		for _, m := range def.MetricColumns {
			assert.True(t, known[m], "kind %s metric column %s", kind, m)
		}
	}
}

func TestFeatureTable_Column(t *testing.T) {
	table := &FeatureTable{
		Rows: []FeatureRow{
			{Num: map[string]float64{"x": 1}},
			{Num: map[string]float64{"x": 2}},
			{Num: map[string]float64{"y": 3}},
		},
	}
	assert.Equal(t, []float64{1, 2, 0}, table.Column("x"))
	assert.Equal(t, 3, table.Len())
}

func TestCollabSchemaUsesKeyField(t *testing.T) {
	def := SchemaFor(CollabKind)
	require.NotNil(t, def)
	assert.Equal(t, "user", def.KeyField, "collab rows come from a keyed map")
}
