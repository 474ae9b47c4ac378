package cmd

import (
	"github.com/huangsam/gapcheck/core"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd classifies every period of a series.
var checkCmd = &cobra.Command{
	Use:   "check [series]",
	Short: "Flag the periods of a daily series with too much missing data",
	Long: `Partition a daily series by a resampling frequency and flag every period that the
selected missing-data policy considers untrustworthy.

Policies:
- any        - missing if any day is absent or null (default)
- wmo        - WMO monthly rule: nm or more null days, or a run of nc null days
- pct        - missing if the absent or null fraction reaches tolerance
- at_least_n - missing if fewer than n valid values

The series may be CSV (with a header row) or Parquet (time and value columns).
Null cells are empty or one of NA, NaN, null, none, -.

Examples:
  # Monthly check with the default policy
  gapcheck check tas.csv --freq MS

  # Yearly WMO check (evaluated month by month)
  gapcheck check tas.csv --freq YS --policy wmo --nm 11 --nc 5

  # Summer only, at most 10% missing per year
  gapcheck check tas.csv --freq YS --season JJA --policy pct --tolerance 0.1

  # 360-day model output, quarters ending in November
  gapcheck check model.parquet --calendar 360_day --freq Q-NOV`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: requireInput,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Check failed", err)
		}
	},
}
