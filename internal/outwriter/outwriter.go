// Package outwriter has report persistence and console rendering logic.
package outwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/jsonsafe"
	"github.com/huangsam/prlens/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates file persistence and console rendering behind a clean API
// for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteInsights persists the report as indented JSON under the configured
// output directory and announces the location on stderr.
func (ow *OutWriter) WriteInsights(report *schema.InsightReport, cfg *contract.Config) error {
	path := InsightsPath(cfg.OutputDir)
	if err := jsonsafe.WriteFile(path, report); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "Wrote insights to %s\n", path)
	return nil
}

// WriteSummary renders the human-readable console summary to stdout.
func (ow *OutWriter) WriteSummary(report *schema.InsightReport, cfg *contract.Config, duration time.Duration) error {
	return writeSummary(os.Stdout, report, cfg, duration)
}

// InsightsPath returns the full path of the insights file for an output dir.
func InsightsPath(outputDir string) string {
	return filepath.Join(outputDir, contract.InsightsFileName)
}
