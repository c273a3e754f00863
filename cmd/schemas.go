package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/prlens/schema"
	"github.com/spf13/cobra"
)

// schemasCmd lists the supported report kinds and their feature schemas.
var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List supported report kinds and their features",
	Long: `Describe every supported report kind: the entity it analyzes, the
features extracted per row, the clustering feature subset, and the weighted
risk factors.

Useful for:
- Checking which snapshot layout a kind expects
- Seeing which factors drive the risk score
- Picking factor names for weight overrides in .prlens.yaml

Examples:
  prlens schemas`,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, kind := range schema.AllReportKinds {
			def := schema.SchemaFor(kind)
			cmd.Printf("%s (%s)\n", kind, def.EntityLabel)
			cmd.Printf("  entity path:  %s\n", def.EntityPath)
			cmd.Printf("  features:     %s\n", strings.Join(def.NumericColumns, ", "))
			cmd.Printf("  clustering:   %s\n", strings.Join(def.ClusterFeatures, ", "))
			cmd.Printf("  risk factors: %s\n", formatFactors(def.RiskFactors))
			cmd.Println()
		}
	},
}

// formatFactors renders risk factors as "name=weight" sorted by name.
func formatFactors(factors map[string]float64) string {
	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%+.2f", name, factors[name]))
	}
	return strings.Join(parts, ", ")
}
