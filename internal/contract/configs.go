package contract

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/prlens/schema"
)

// Default values for configuration.
const (
	DefaultOutputDir = "./reports"
	DefaultMaxK      = 8
	DefaultPrecision = 1
	MaxClusters      = 50
	InsightsFileName = "ml_insights.json"
)

// WeightsRawInput holds per-kind risk factor overrides from the YAML config
// file, e.g.:
//
//	weights:
//	  stale:
//	    inactive_days: 0.4
//	    engagement_score: -0.1
type WeightsRawInput map[string]map[string]float64

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Kind      schema.ReportKind
	InputPath string
	OutputDir string

	Clusters  int // Requested cluster count; 0 means auto-select via elbow
	MaxK      int
	Visualize bool
	Verbose   bool
	Precision int
	Width     int // Terminal width override (0 = auto-detect)
	UseColors bool

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	// CustomWeights is a mapping of [kind][factor] = weight from config overrides.
	CustomWeights map[schema.ReportKind]map[string]float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from the subcommand, so no tag
	KindStr string

	Input        string `mapstructure:"input"`
	Output       string `mapstructure:"output"`
	Clusters     int    `mapstructure:"clusters"`
	MaxK         int    `mapstructure:"max-k"`
	Visualize    bool   `mapstructure:"visualize"`
	Verbose      bool   `mapstructure:"verbose"`
	Precision    int    `mapstructure:"precision"`
	Width        int    `mapstructure:"width"`
	Color        string `mapstructure:"color"`
	RunBackend   string `mapstructure:"run-backend"`
	RunDBConnect string `mapstructure:"run-db-connect"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Report kind ---
	kind := schema.ReportKind(strings.ToLower(input.KindStr))
	if _, ok := schema.ValidReportKinds[kind]; !ok {
		return fmt.Errorf("invalid report kind %q", input.KindStr)
	}
	cfg.Kind = kind

	// --- 2. Input path ---
	if strings.TrimSpace(input.Input) == "" {
		return fmt.Errorf("--input is required")
	}
	absInput, err := filepath.Abs(input.Input)
	if err != nil {
		return fmt.Errorf("invalid input path %q: %w", input.Input, err)
	}
	cfg.InputPath = absInput

	// --- 3. Output directory ---
	outDir := input.Output
	if strings.TrimSpace(outDir) == "" {
		outDir = DefaultOutputDir
	}
	cfg.OutputDir, err = filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("invalid output path %q: %w", outDir, err)
	}

	// --- 4. Cluster count ---
	if input.Clusters < 0 || input.Clusters > MaxClusters {
		return fmt.Errorf("clusters must be between 0 and %d (received %d)", MaxClusters, input.Clusters)
	}
	cfg.Clusters = input.Clusters

	if input.MaxK < 2 {
		cfg.MaxK = DefaultMaxK
	} else {
		cfg.MaxK = input.MaxK
	}

	// --- 5. Precision and color ---
	if input.Precision < 1 || input.Precision > 3 {
		return fmt.Errorf("precision must be between 1 and 3 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision
	cfg.Width = input.Width
	cfg.UseColors = parseBoolish(input.Color, true)

	cfg.Visualize = input.Visualize
	cfg.Verbose = input.Verbose

	// --- 6. Run store backend ---
	backend := schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidRunBackends[backend]; !ok {
		return fmt.Errorf("invalid run backend %q. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	if err := ValidateDatabaseConnectionString(backend, input.RunDBConnect); err != nil {
		return err
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = input.RunDBConnect

	// --- 7. Weight overrides from config file ---
	cfg.CustomWeights = processWeights(input.Weights)

	return nil
}

// processWeights converts raw config-file weight overrides into the typed
// per-kind map, silently ignoring unknown kinds and unknown factor names.
func processWeights(raw WeightsRawInput) map[schema.ReportKind]map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[schema.ReportKind]map[string]float64)
	for kindStr, factors := range raw {
		kind := schema.ReportKind(strings.ToLower(kindStr))
		def := schema.SchemaFor(kind)
		if def == nil {
			continue
		}
		merged := make(map[string]float64)
		for name, weight := range factors {
			if _, ok := def.RiskFactors[name]; ok {
				merged[name] = weight
			}
		}
		if len(merged) > 0 {
			out[kind] = merged
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EffectiveRiskFactors merges the schema defaults with any configured
// overrides for the active kind.
func (c *Config) EffectiveRiskFactors(def *schema.FeatureSchema) map[string]float64 {
	factors := make(map[string]float64, len(def.RiskFactors))
	maps.Copy(factors, def.RiskFactors)
	if custom, ok := c.CustomWeights[c.Kind]; ok {
		maps.Copy(factors, custom)
	}
	return factors
}

// ConfigParams returns the run parameters persisted alongside a tracked run.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"kind":     string(c.Kind),
		"input":    c.InputPath,
		"output":   c.OutputDir,
		"clusters": c.Clusters,
		"max_k":    c.MaxK,
	}
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CustomWeights != nil {
		clone.CustomWeights = make(map[schema.ReportKind]map[string]float64)
		for kind, factors := range c.CustomWeights {
			clone.CustomWeights[kind] = make(map[string]float64)
			maps.Copy(clone.CustomWeights[kind], factors)
		}
	}
	return &clone
}

// parseBoolish interprets yes/no/true/false/1/0 strings with a fallback.
func parseBoolish(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return fallback
	}
}

// EnsureOutputDir creates the output directory if it does not exist.
func EnsureOutputDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
