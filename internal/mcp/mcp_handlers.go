package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/gapcheck/core"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// policyArgs maps numeric tool arguments to the policy option they override.
var policyArgs = []struct {
	arg    string
	policy schema.PolicyName
}{
	{"nm", schema.WMOPolicy},
	{"nc", schema.WMOPolicy},
	{"tolerance", schema.PctPolicy},
	{"n", schema.AtLeastNPolicy},
}

func (h *toolHandler) handleCheckMissing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputPath = strings.TrimSpace(request.GetString("path", ""))
	if cfg.InputPath == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	cfg.Freq = strings.TrimSpace(request.GetString("freq", cfg.Freq))
	if p := request.GetString("policy", ""); p != "" {
		cfg.Policy = schema.PolicyName(strings.ToLower(p))
	}
	if c := request.GetString("calendar", ""); c != "" {
		cfg.Calendar = schema.CalendarName(strings.ToLower(c))
	}
	cfg.RequireDaily = request.GetBool("require_daily", cfg.RequireDaily)

	args := request.GetArguments()
	for _, pa := range policyArgs {
		if _, ok := args[pa.arg]; !ok {
			continue
		}
		if cfg.PolicyOptions == nil {
			cfg.PolicyOptions = make(map[schema.PolicyName]map[string]any)
		}
		if cfg.PolicyOptions[pa.policy] == nil {
			cfg.PolicyOptions[pa.policy] = schema.GetDefaultPolicyOptions(pa.policy)
		}
		cfg.PolicyOptions[pa.policy][pa.arg] = request.GetFloat(pa.arg, 0)
	}

	season := request.GetString("season", "")
	months := request.GetString("months", "")
	doyBounds := request.GetString("doy_bounds", "")
	dateBounds := request.GetString("date_bounds", "")
	if season+months+doyBounds+dateBounds != "" {
		ix, err := contract.ParseIndexer(season, months, doyBounds, dateBounds)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid indexer: %v", err)), nil
		}
		cfg.Indexer = ix
	}

	result, err := core.GetCheckResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAssertDaily(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputPath = strings.TrimSpace(request.GetString("path", ""))
	if cfg.InputPath == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	if c := request.GetString("calendar", ""); c != "" {
		cfg.Calendar = schema.CalendarName(strings.ToLower(c))
	}

	report, err := core.GetContinuityReport(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("daily check failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListPolicies(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := core.GetPolicies(h.baseCfg.Policy, h.baseCfg.PolicyOptions)
	jsonData, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
