package contract

import (
	"cmp"
	"fmt"
	"path/filepath"
)

// LogCheckHeader prints a header for a missingness check.
func LogCheckHeader(cfg *Config) {
	name := filepath.Base(cfg.InputPath)
	if name == "" || name == "." {
		name = "stdin"
	}

	// Line 1: The check summary (Input and Policy)
	fmt.Printf("🔎 Series: %s (Policy: %s)\n", name, cfg.Policy)

	// Line 2: How the series is partitioned
	line := fmt.Sprintf("📅 Freq: %s | Calendar: %s", cmp.Or(cfg.Freq, "(whole series)"), cfg.Calendar)
	if !cfg.Indexer.IsEmpty() {
		line += " | Indexer: " + cfg.Indexer.String()
	}
	fmt.Println(line)
}
