// Package core has the missing-data classification engine and the command entry points.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/internal/outwriter"
	"github.com/huangsam/gapcheck/internal/seriesio"
	"github.com/huangsam/gapcheck/schema"
)

// ExecutorFunc defines the function signature for executing the commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteCheck classifies the input series and prints one verdict per period.
// It serves as the main entry point for the 'check' command.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := runCheckCore(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteCheck(result, cfg, time.Since(start))
}

// GetCheckResult classifies the input series without printing anything.
func GetCheckResult(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.CheckResult, error) {
	return runCheckCore(WithSuppressHeader(ctx), cfg, mgr)
}

// ExecuteDaily prints whether the input series is a strict daily record.
// A series that is not daily is reported and then returned as an error.
func ExecuteDaily(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	report, err := GetContinuityReport(cfg)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteContinuity(report, cfg); err != nil {
		return err
	}
	if !report.Daily {
		return fmt.Errorf("%s: %w", report.Input, ErrNotDaily)
	}
	return nil
}

// GetContinuityReport loads the input series and checks daily continuity.
// Only loading problems are returned as errors.
func GetContinuityReport(cfg *contract.Config) (schema.ContinuityReport, error) {
	c, err := cal.Lookup(cfg.Calendar)
	if err != nil {
		return schema.ContinuityReport{}, err
	}
	table, err := seriesio.Load(cfg.InputPath, cfg.TimeColumn, cfg.ValueColumn)
	if err != nil {
		return schema.ContinuityReport{}, err
	}
	return continuityReport(cfg.InputPath, Series{Calendar: c, Times: table.Times, Values: table.Values}), nil
}

// continuityReport describes s for the daily command and the MCP tool.
func continuityReport(input string, s Series) schema.ContinuityReport {
	report := schema.ContinuityReport{
		Input:  input,
		Length: s.Len(),
		Daily:  true,
	}
	if s.Calendar != nil {
		report.Calendar = s.Calendar.Name()
	}
	if s.Len() > 0 {
		report.First = s.First().String()
		report.Last = s.Last().String()
	}
	if err := AssertDaily(s); err != nil {
		report.Daily = false
		report.Problem = err.Error()
	}
	return report
}

// ExecutePolicies prints every registered policy with its configured options.
func ExecutePolicies(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.NewOutWriter().WritePolicies(GetPolicies(cfg.Policy, cfg.PolicyOptions), cfg)
}

// GetPolicies describes the registered policies with opts laid over their
// defaults, marking active.
func GetPolicies(active schema.PolicyName, opts map[schema.PolicyName]map[string]any) []schema.PolicyInfo {
	return DefaultRegistry.Describe(active, opts)
}
