// Package cmd defines the command-line interface for prlens.
package cmd

import (
	"github.com/huangsam/prlens/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(schemasCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the report-kind subcommands to the parent analyze command
	analyzeCmd.AddCommand(analyzeStaleCmd)
	analyzeCmd.AddCommand(analyzeLeadtimeCmd)
	analyzeCmd.AddCommand(analyzeCollabCmd)
	analyzeCmd.AddCommand(analyzeReadinessCmd)
	analyzeCmd.AddCommand(analyzeSentimentCmd)
	analyzeCmd.AddCommand(analyzeLifecycleCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("input", "i", "", "Path to the JSON snapshot file to analyze")
	rootCmd.PersistentFlags().StringP("output", "o", contract.DefaultOutputDir, "Directory where ml_insights.json is written")
	rootCmd.PersistentFlags().IntP("clusters", "k", 0, "Requested cluster count (0 = auto-select via elbow method)")
	rootCmd.PersistentFlags().Int("max-k", contract.DefaultMaxK, "Upper bound for automatic cluster selection")
	rootCmd.PersistentFlags().Bool("visualize", false, "Render an ASCII risk distribution chart in the summary")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log pipeline progress to stderr")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for mysql/postgresql run tracking")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runsListCmd to Viper
	runsListCmd.Flags().Int("limit", 20, "Number of runs to display")
	if err := viper.BindPFlags(runsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs list flags", err)
	}

	// Bind all flags of runsExportCmd to Viper
	runsExportCmd.Flags().String("output-file", "", "Path prefix for the exported Parquet files")
	if err := viper.BindPFlags(runsExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs export flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
