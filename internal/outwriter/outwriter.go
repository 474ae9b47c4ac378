// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteCheck prints a missingness check result using the configured output format.
func (ow *OutWriter) WriteCheck(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCheckResult(result, cfg, duration)
}

// WriteContinuity prints a daily continuity report using the configured output format.
func (ow *OutWriter) WriteContinuity(report schema.ContinuityReport, cfg *contract.Config) error {
	return WriteContinuityReport(report, cfg)
}

// WritePolicies prints the registered policies using the configured output format.
func (ow *OutWriter) WritePolicies(infos []schema.PolicyInfo, cfg *contract.Config) error {
	return PrintPolicies(infos, cfg)
}
