// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/gapcheck/schema"
)

// StoreManager defines the interface for managing run tracking stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking check runs and their period outcomes.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, inputPath string, policy schema.PolicyName, freq string, configParams map[string]any) (int64, error)

	// RecordPeriods stores the per-period outcomes of a run
	RecordPeriods(runID int64, periods []schema.PeriodOutcome) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalPeriods, missingPeriods int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllPeriods returns every recorded period ordered by run and period start
	GetAllPeriods() ([]schema.PeriodRecord, error)

	// Close closes the underlying connection
	Close() error
}
