package core

import (
	"context"
	"time"

	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/schema"
)

// runCheckCore loads, classifies and tracks a single check.
func runCheckCore(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.CheckResult, error) {
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		contract.LogCheckHeader(cfg)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var store contract.RunStore
	if mgr != nil {
		store = mgr.GetRunStore()
	}
	if store != nil {
		runID, err := store.BeginRun(time.Now(), cfg.InputPath, cfg.Policy, cfg.Freq, cfg.ConfigParams())
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Load, Validate and Classify ---
	result, err := NewCheckResultBuilder(ctx, cfg).
		LoadSeries().
		RequireDaily().
		Classify().
		Build()
	if err != nil {
		closeFailedRun(ctx, store)
		return schema.CheckResult{}, err
	}

	// --- 2. End Run Tracking ---
	recordRun(ctx, store, result)
	return result, nil
}

// recordRun stores the period outcomes and closes the run. Failures only warn.
func recordRun(ctx context.Context, store contract.RunStore, result schema.CheckResult) {
	runID, ok := getRunID(ctx)
	if store == nil || !ok {
		return
	}
	if err := store.RecordPeriods(runID, result.Periods); err != nil {
		contract.LogWarn("Failed to record period outcomes", err)
	}
	if err := store.EndRun(runID, time.Now(), result.TotalPeriods, result.MissingPeriods); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// closeFailedRun ends a run whose check failed, so it does not stay open with no end time.
func closeFailedRun(ctx context.Context, store contract.RunStore) {
	runID, ok := getRunID(ctx)
	if store == nil || !ok {
		return
	}
	if err := store.EndRun(runID, time.Now(), 0, 0); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
