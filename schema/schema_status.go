package schema

import "time"

// RunStatus represents the status of the run tracking store.
type RunStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalRuns           int              `json:"total_runs"`
	LastRunID           int64            `json:"last_run_id"`
	LastRunTime         time.Time        `json:"last_run_time"`
	OldestRunTime       time.Time        `json:"oldest_run_time"`
	TotalPeriodsChecked int              `json:"total_periods_checked"`
	TableSizes          map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the gapcheck_runs table.
type RunRecord struct {
	RunID          int64
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	InputPath      string
	Policy         string
	Freq           string
	TotalPeriods   int32
	MissingPeriods int32
	ConfigParams   *string
}

// PeriodRecord represents a row from the gapcheck_period_results table.
type PeriodRecord struct {
	RunID           int64
	PeriodLabel     string
	PeriodStart     string
	PeriodEnd       string
	Observed        int32
	Nulls           int32
	Expected        int32
	MissingFraction float64
	Missing         bool
}
