package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/internal/parquet"
)

// ExecuteRunsExport exports the tracked runs of the global manager to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	return ExportRuns(Manager.GetRunStore(), outputFile)
}

// ExportRuns writes every run and period outcome of store next to outputFile.
func ExportRuns(store contract.RunStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total period records: %d\n", status.TableSizes[periodResultsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	periods, err := store.GetAllPeriods()
	if err != nil {
		return fmt.Errorf("failed to retrieve period results: %w", err)
	}

	// Write runs to Parquet
	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteCheckRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	// Write period results to Parquet
	parquetPeriods := parquet.ConvertPeriodRecords(periods)
	periodsFile := outputFile + ".period_results.parquet"
	if err := parquet.WriteRunPeriodsParquet(parquetPeriods, periodsFile); err != nil {
		return fmt.Errorf("failed to write period results: %w", err)
	}
	fmt.Printf("Exported %d period records to: %s\n", len(parquetPeriods), periodsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - xarray")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
