package cmd

import (
	"github.com/huangsam/gapcheck/core"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/spf13/cobra"
)

// policiesCmd lists the registered policies.
var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List missing-data policies and their options",
	Long: `Show every registered missing-data policy, its options after the config file
has been applied, and which one is active.

Policy options can be set per policy in .gapcheck.yaml:

  policy: wmo
  policies:
    wmo:
      nm: 11
      nc: 5
    pct:
      tolerance: 0.05

Examples:
  # Show policies
  gapcheck policies

  # Machine readable
  gapcheck policies --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePolicies(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to list policies", err)
		}
	},
}
