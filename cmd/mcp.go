package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/mcp"
	"github.com/huangsam/prlens/internal/runstore"
	"github.com/huangsam/prlens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpSetup loads base configuration for the MCP server. The report kind and
// input path arrive per tool call, so only defaults are validated here.
func mcpSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	outDir := input.Output
	if outDir == "" {
		outDir = contract.DefaultOutputDir
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("invalid output path %q: %w", outDir, err)
	}
	cfg.OutputDir = absOut

	cfg.Clusters = input.Clusters
	cfg.MaxK = input.MaxK
	if cfg.MaxK < 2 {
		cfg.MaxK = contract.DefaultMaxK
	}
	cfg.Precision = contract.DefaultPrecision

	backend := schema.DatabaseBackend(input.RunBackend)
	if backend == "" {
		backend = schema.NoneBackend
	}
	if err := contract.ValidateDatabaseConnectionString(backend, input.RunDBConnect); err != nil {
		return err
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = input.RunDBConnect

	if err := runstore.InitTracking(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	if storeManager == nil {
		storeManager = runstore.Manager
	}

	return nil
}

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the prlens MCP server",
	Long:  `Launch an MCP server that allows AI agents to run snapshot analysis via standard tools.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// Keep setup minimal: stdio is used for the protocol, so nothing
		// may be printed during initialization.
		return mcpSetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
