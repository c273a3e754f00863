// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the prlens MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"PR Insights Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_insights ---
	s.AddTool(mcp.NewTool("analyze_insights",
		mcp.WithDescription("Run ML-style analysis (clustering, risk scoring, anomaly detection) on a repository activity snapshot."),
		mcp.WithString("kind", mcp.Description("Report kind to analyze."), mcp.Required(),
			mcp.Enum("stale", "leadtime", "collab", "readiness", "sentiment", "lifecycle")),
		mcp.WithString("input", mcp.Description("Path to the JSON snapshot file."), mcp.Required()),
		mcp.WithNumber("clusters", mcp.Description("Requested cluster count (0 selects k automatically).")),
		mcp.WithNumber("max_k", mcp.Description("Upper bound for automatic cluster selection.")),
	), h.handleAnalyzeInsights)

	// --- 2. Tool: list_runs ---
	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List recent analysis runs from the run store, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return. Defaults to 20.")),
	), h.handleListRuns)

	// --- 3. Tool: list_report_kinds ---
	s.AddTool(mcp.NewTool("list_report_kinds",
		mcp.WithDescription("Describe the supported report kinds: their entities, features and risk factors."),
	), h.handleListReportKinds)

	return s
}

// StartMCPServer starts the prlens MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
