// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the gapcheck MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Gapcheck Missing Data Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: check_missing ---
	s.AddTool(mcp.NewTool("check_missing",
		mcp.WithDescription("Classify every period of a daily series as missing or complete under a missing-data policy."),
		mcp.WithString("path", mcp.Description("Path to the CSV or Parquet series."), mcp.Required()),
		mcp.WithString("freq", mcp.Description("Resampling frequency such as MS, QS-DEC, Q-NOV or YS. Empty means the whole series.")),
		mcp.WithString("policy", mcp.Description("Missing-data policy. Defaults to 'any'."), mcp.Enum("any", "wmo", "pct", "at_least_n")),
		mcp.WithString("calendar", mcp.Description("Calendar of the time axis (standard, noleap, all_leap, 360_day, julian).")),
		mcp.WithNumber("nm", mcp.Description("wmo: null days that make a month missing.")),
		mcp.WithNumber("nc", mcp.Description("wmo: length of the null run that makes a month missing.")),
		mcp.WithNumber("tolerance", mcp.Description("pct: missing fraction at which a period is missing, between 0 and 1.")),
		mcp.WithNumber("n", mcp.Description("at_least_n: valid values a period needs.")),
		mcp.WithString("season", mcp.Description("Only keep these seasons, e.g. 'DJF,JJA'.")),
		mcp.WithString("months", mcp.Description("Only keep these months, e.g. '6,7,8'.")),
		mcp.WithString("doy_bounds", mcp.Description("Only keep this day-of-year range, e.g. '100:200'.")),
		mcp.WithString("date_bounds", mcp.Description("Only keep this MM-DD range, e.g. '06-01:08-31'.")),
		mcp.WithBoolean("require_daily", mcp.Description("Fail when the series has gaps or duplicate days.")),
	), h.handleCheckMissing)

	// --- 2. Tool: assert_daily ---
	s.AddTool(mcp.NewTool("assert_daily",
		mcp.WithDescription("Check that a series is a strict daily record with no gaps and no duplicate days."),
		mcp.WithString("path", mcp.Description("Path to the CSV or Parquet series."), mcp.Required()),
		mcp.WithString("calendar", mcp.Description("Calendar of the time axis.")),
	), h.handleAssertDaily)

	// --- 3. Tool: list_policies ---
	s.AddTool(mcp.NewTool("list_policies",
		mcp.WithDescription("List the registered missing-data policies and their default options."),
	), h.handleListPolicies)

	return s
}

// StartMCPServer starts the gapcheck MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
