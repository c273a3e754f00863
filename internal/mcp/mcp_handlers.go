package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/prlens/core"
	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/jsonsafe"
	"github.com/huangsam/prlens/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handleAnalyzeInsights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	kind := schema.ReportKind(strings.ToLower(request.GetString("kind", "")))
	if _, ok := schema.ValidReportKinds[kind]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report kind %q", kind)), nil
	}
	cfg.Kind = kind

	input := request.GetString("input", "")
	if input == "" {
		return mcp.NewToolResultError("--input is required"), nil
	}
	absInput, err := filepath.Abs(input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid input path %q: %v", input, err)), nil
	}
	cfg.InputPath = absInput

	if c := request.GetInt("clusters", 0); c > 0 {
		if c > contract.MaxClusters {
			return mcp.NewToolResultError(fmt.Sprintf("clusters must be at most %d", contract.MaxClusters)), nil
		}
		cfg.Clusters = c
	}
	if k := request.GetInt("max_k", 0); k >= 2 {
		cfg.MaxK = k
	}

	report, err := core.ExecuteAnalyze(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := jsonsafe.Marshal(report)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListRuns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var store contract.RunStore
	if h.mgr != nil {
		store = h.mgr.GetRunStore()
	}
	if store == nil {
		return mcp.NewToolResultError("run tracking is not configured"), nil
	}

	limit := request.GetInt("limit", 20)
	runs, err := store.ListRuns(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	jsonData, err := jsonsafe.Marshal(runs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListReportKinds(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type kindInfo struct {
		Kind        string             `json:"kind"`
		EntityLabel string             `json:"entity_label"`
		Features    []string           `json:"features"`
		RiskFactors map[string]float64 `json:"risk_factors"`
	}

	var kinds []kindInfo
	for _, kind := range schema.AllReportKinds {
		def := schema.SchemaFor(kind)
		kinds = append(kinds, kindInfo{
			Kind:        string(kind),
			EntityLabel: def.EntityLabel,
			Features:    def.NumericColumns,
			RiskFactors: def.RiskFactors,
		})
	}

	jsonData, err := jsonsafe.Marshal(kinds)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize kinds: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
