// Package parquet provides data structures and functions for reading daily series
// and exporting gapcheck results using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gapcheck/schema"
	"github.com/parquet-go/parquet-go"
)

// SeriesRow is one timestamp of a daily series. Time is an ISO date (YYYY-MM-DD)
// so that dates which only exist in non-Gregorian calendars survive the round trip.
type SeriesRow struct {
	Time  string   `parquet:"time,snappy"`
	Value *float64 `parquet:"value,optional,snappy"`
}

// PeriodResult is one classified period of a check.
type PeriodResult struct {
	Label           string  `parquet:"label,snappy"`
	PeriodStart     string  `parquet:"period_start,snappy"`
	PeriodEnd       string  `parquet:"period_end,snappy"`
	Observed        int32   `parquet:"observed,snappy"`
	Nulls           int32   `parquet:"nulls,snappy"`
	Expected        int32   `parquet:"expected,snappy"`
	MissingFraction float64 `parquet:"missing_fraction,snappy"`
	Missing         bool    `parquet:"missing,snappy"`
}

// CheckRun represents a single tracked check run with metadata.
// This struct maps to the gapcheck_runs database table.
type CheckRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	InputPath string `parquet:"input_path,snappy"`
	Policy    string `parquet:"policy,snappy"`
	Freq      string `parquet:"freq,snappy"`

	TotalPeriods   int32 `parquet:"total_periods,snappy"`
	MissingPeriods int32 `parquet:"missing_periods,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunPeriod is a period outcome recorded for a tracked run.
// This struct maps to the gapcheck_period_results database table.
type RunPeriod struct {
	RunID           int64   `parquet:"run_id,snappy"`
	Label           string  `parquet:"label,snappy"`
	PeriodStart     string  `parquet:"period_start,snappy"`
	PeriodEnd       string  `parquet:"period_end,snappy"`
	Observed        int32   `parquet:"observed,snappy"`
	Nulls           int32   `parquet:"nulls,snappy"`
	Expected        int32   `parquet:"expected,snappy"`
	MissingFraction float64 `parquet:"missing_fraction,snappy"`
	Missing         bool    `parquet:"missing,snappy"`
}

// writeParquet writes rows of T to outputPath using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteSeriesParquet writes a daily series to a Parquet file.
func WriteSeriesParquet(data []SeriesRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ReadSeriesParquet reads a daily series from a Parquet file with time and value columns.
func ReadSeriesParquet(path string) ([]SeriesRow, error) {
	rows, err := parquet.ReadFile[SeriesRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet series %s: %w", path, err)
	}
	return rows, nil
}

// WritePeriodResultsParquet writes classified periods to a Parquet file.
func WritePeriodResultsParquet(data []PeriodResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCheckRunsParquet writes tracked runs to a Parquet file.
func WriteCheckRunsParquet(data []CheckRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunPeriodsParquet writes tracked period outcomes to a Parquet file.
func WriteRunPeriodsParquet(data []RunPeriod, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertPeriodOutcomes converts schema.PeriodOutcome to PeriodResult for Parquet export.
func ConvertPeriodOutcomes(outcomes []schema.PeriodOutcome) []PeriodResult {
	result := make([]PeriodResult, len(outcomes))
	for i, o := range outcomes {
		result[i] = PeriodResult{
			Label:           o.Label,
			PeriodStart:     o.Start,
			PeriodEnd:       o.End,
			Observed:        int32(o.Observed),
			Nulls:           int32(o.Nulls),
			Expected:        int32(o.Expected),
			MissingFraction: o.MissingFraction,
			Missing:         o.Missing,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to CheckRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []CheckRun {
	result := make([]CheckRun, len(records))
	for i, record := range records {
		result[i] = CheckRun{
			RunID:          record.RunID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			InputPath:      record.InputPath,
			Policy:         record.Policy,
			Freq:           record.Freq,
			TotalPeriods:   record.TotalPeriods,
			MissingPeriods: record.MissingPeriods,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertPeriodRecords converts schema.PeriodRecord to RunPeriod for Parquet export.
func ConvertPeriodRecords(records []schema.PeriodRecord) []RunPeriod {
	result := make([]RunPeriod, len(records))
	for i, record := range records {
		result[i] = RunPeriod{
			RunID:           record.RunID,
			Label:           record.PeriodLabel,
			PeriodStart:     record.PeriodStart,
			PeriodEnd:       record.PeriodEnd,
			Observed:        record.Observed,
			Nulls:           record.Nulls,
			Expected:        record.Expected,
			MissingFraction: record.MissingFraction,
			Missing:         record.Missing,
		}
	}
	return result
}
