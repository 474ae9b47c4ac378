package cmd

import (
	"github.com/huangsam/gapcheck/core"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/spf13/cobra"
)

// dailyCmd asserts daily continuity.
var dailyCmd = &cobra.Command{
	Use:   "daily [series]",
	Short: "Verify that a series is a strict daily record (exits non-zero otherwise)",
	Long: `Check that every day between the first and last timestamp appears exactly once.

Reports the first problem found:
- a gap of one or more days
- a duplicate timestamp
- timestamps out of order
- a date that does not exist in the calendar

Use this before computing annual statistics that assume a complete daily axis.

Examples:
  # Check a station record
  gapcheck daily station.csv

  # Check a noleap model run, JSON report
  gapcheck daily model.parquet --calendar noleap --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: requireInput,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDaily(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Daily check failed", err)
		}
	},
}
