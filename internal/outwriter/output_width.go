package outwriter

import (
	"os"

	"github.com/huangsam/gapcheck/internal/contract"
	"golang.org/x/term"
)

// Width needed before the coverage bar column is shown.
const (
	baseTableWidth = 78 // Label + Start + End + Observed + Nulls + Expected + Missing% + Status
	minBarWidth    = 10
	maxBarWidth    = 30
)

// getTableWidth returns the override width or the detected terminal width.
func getTableWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// getCoverageBarWidth returns the width of the coverage bar column,
// or 0 when the table has no room for it.
func getCoverageBarWidth(cfg *contract.Config) int {
	available := getTableWidth(cfg) - baseTableWidth - 4 // borders and padding
	if available < minBarWidth {
		return 0
	}
	return min(available, maxBarWidth)
}
