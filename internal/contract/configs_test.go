package contract

import (
	"path/filepath"
	"testing"

	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		KindStr:   "stale",
		Input:     "snapshot.json",
		Precision: 1,
	}
}

// Test ProcessAndValidate with valid inputs
func TestProcessAndValidate(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()
	input.KindStr = "STALE"
	input.Output = "out"
	input.Clusters = 4
	input.MaxK = 6
	input.Precision = 2
	input.Visualize = true

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.StaleKind, cfg.Kind, "kind is case-insensitive")
	assert.True(t, filepath.IsAbs(cfg.InputPath))
	assert.True(t, filepath.IsAbs(cfg.OutputDir))
	assert.Equal(t, 4, cfg.Clusters)
	assert.Equal(t, 6, cfg.MaxK)
	assert.Equal(t, 2, cfg.Precision)
	assert.True(t, cfg.Visualize)
	assert.Equal(t, schema.NoneBackend, cfg.RunBackend, "empty backend defaults to none")
	assert.True(t, cfg.UseColors, "colors default to on")
}

// Test ProcessAndValidate rejections
func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConfigRawInput)
		wantErr string
	}{
		{"invalid kind", func(in *ConfigRawInput) { in.KindStr = "bogus" }, "invalid report kind"},
		{"missing input", func(in *ConfigRawInput) { in.Input = "  " }, "--input is required"},
		{"negative clusters", func(in *ConfigRawInput) { in.Clusters = -1 }, "clusters must be between"},
		{"too many clusters", func(in *ConfigRawInput) { in.Clusters = 51 }, "clusters must be between"},
		{"precision too low", func(in *ConfigRawInput) { in.Precision = 0 }, "precision must be between"},
		{"precision too high", func(in *ConfigRawInput) { in.Precision = 4 }, "precision must be between"},
		{"invalid backend", func(in *ConfigRawInput) { in.RunBackend = "oracle" }, "invalid run backend"},
		{"mysql without conn string", func(in *ConfigRawInput) { in.RunBackend = "mysql" }, "requires a connection string"},
		{"postgres without conn string", func(in *ConfigRawInput) { in.RunBackend = "postgresql" }, "requires a connection string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			err := ProcessAndValidate(&Config{}, input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// Test MaxK defaulting when out of range
func TestProcessAndValidateMaxKDefault(t *testing.T) {
	for _, maxK := range []int{0, 1, -5} {
		cfg := &Config{}
		input := validRawInput()
		input.MaxK = maxK
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, DefaultMaxK, cfg.MaxK)
	}
}

// Test color flag parsing
func TestProcessAndValidateColor(t *testing.T) {
	tests := []struct {
		color string
		want  bool
	}{
		{"yes", true}, {"TRUE", true}, {"1", true}, {"on", true},
		{"no", false}, {"false", false}, {"0", false}, {"off", false},
		{"", true}, {"maybe", true},
	}
	for _, tt := range tests {
		cfg := &Config{}
		input := validRawInput()
		input.Color = tt.color
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, tt.want, cfg.UseColors, "color=%q", tt.color)
	}
}

// Test weight override filtering
func TestProcessWeights(t *testing.T) {
	raw := WeightsRawInput{
		"stale": {
			"inactive_days": 0.5,
			"made_up":       0.9, // unknown factor, dropped
		},
		"bogus": {"x": 1}, // unknown kind, dropped
	}
	out := processWeights(raw)
	require.Len(t, out, 1)
	assert.Equal(t, map[string]float64{"inactive_days": 0.5}, out[schema.StaleKind])

	assert.Nil(t, processWeights(nil))
	assert.Nil(t, processWeights(WeightsRawInput{"bogus": {"x": 1}}))
	assert.Nil(t, processWeights(WeightsRawInput{"stale": {"made_up": 0.9}}),
		"entries that filter down to nothing leave no override map")
}

// Test merging schema defaults with overrides
func TestEffectiveRiskFactors(t *testing.T) {
	def := schema.SchemaFor(schema.StaleKind)
	cfg := &Config{
		Kind: schema.StaleKind,
		CustomWeights: map[schema.ReportKind]map[string]float64{
			schema.StaleKind: {"inactive_days": 0.9},
		},
	}

	factors := cfg.EffectiveRiskFactors(def)
	assert.Equal(t, 0.9, factors["inactive_days"], "override wins")
	assert.Len(t, factors, len(def.RiskFactors), "non-overridden defaults survive")

	// No overrides at all: pure schema defaults
	plain := (&Config{Kind: schema.StaleKind}).EffectiveRiskFactors(def)
	assert.Equal(t, def.RiskFactors, plain)
}

// Test ConfigParams payload
func TestConfigParams(t *testing.T) {
	cfg := &Config{
		Kind:      schema.LeadTimeKind,
		InputPath: "/in.json",
		OutputDir: "/out",
		Clusters:  3,
		MaxK:      8,
	}
	params := cfg.ConfigParams()
	assert.Equal(t, "leadtime", params["kind"])
	assert.Equal(t, "/in.json", params["input"])
	assert.Equal(t, 3, params["clusters"])
	assert.Equal(t, 8, params["max_k"])
}

// Test Clone deep-copies the weight map
func TestClone(t *testing.T) {
	cfg := &Config{
		Kind: schema.StaleKind,
		CustomWeights: map[schema.ReportKind]map[string]float64{
			schema.StaleKind: {"inactive_days": 0.4},
		},
	}
	clone := cfg.Clone()
	clone.CustomWeights[schema.StaleKind]["inactive_days"] = 0.99

	assert.Equal(t, 0.4, cfg.CustomWeights[schema.StaleKind]["inactive_days"])
	assert.Equal(t, cfg.Kind, clone.Kind)
}
