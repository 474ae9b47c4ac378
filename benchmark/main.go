// Package main provides a performance benchmarking tool for the gapcheck CLI.
// It generates synthetic daily series of different lengths, checks each one with
// several policies and frequencies, and runs every check multiple times, once
// without run tracking and once with the SQLite store, averaging the timings
// and generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - gapcheck binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic series are written
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (untracked average, first tracked run and average of the rest).
type BenchmarkResult struct {
	Series      string
	Command     string
	NoTrackTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkCase is one gapcheck invocation to time.
type BenchmarkCase struct {
	Name string
	Args string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoTrackRuns int
	TrackRuns   int
	Years       []int
	NullEvery   int
	Cases       []BenchmarkCase
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		NoTrackRuns: 3,
		TrackRuns:   4,
		Years:       []int{10, 50, 150},
		NullEvery:   37,
		Cases: []BenchmarkCase{
			{Name: "any-MS", Args: "--freq MS"},
			{Name: "wmo-YS", Args: "--freq YS --policy wmo"},
			{Name: "pct-QS-DEC", Args: "--freq QS-DEC --policy pct --tolerance 0.1"},
			{Name: "at_least_n-JJA", Args: "--freq YS --season JJA --policy at_least_n --n 80"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Start from an empty run store
	fmt.Printf("Clearing tracked runs...\n")
	clearCmd := exec.Command("gapcheck", "runs", "clear", "--store-backend", "sqlite")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear runs: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Runs cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the gapcheck binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("gapcheck"); err != nil {
		return fmt.Errorf("gapcheck binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// writeSeries writes a daily CSV series of the given number of years starting in 1901.
// Every nullEvery-th day is null.
func writeSeries(dir string, years, nullEvery int) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("series_%dy.csv", years))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"time", "value"}); err != nil {
		return "", err
	}
	start := time.Date(1901, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(years, 0, 0)
	i := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		value := fmt.Sprintf("%.1f", 10+float64(i%365)/36.5)
		if nullEvery > 0 && i%nullEvery == 0 {
			value = "NaN"
		}
		if err := writer.Write([]string{d.Format(time.DateOnly), value}); err != nil {
			return "", err
		}
		i++
	}
	writer.Flush()
	return path, writer.Error()
}

// runBenchmarks executes all benchmark cases across the generated series
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d series, %d cases, %v timeout, untracked: %d runs, tracked: %d runs\n",
		len(config.Years), len(config.Cases), config.Timeout, config.NoTrackRuns, config.TrackRuns)

	for _, years := range config.Years {
		path, err := writeSeries(config.WorkDir, years, config.NullEvery)
		if err != nil {
			return nil, fmt.Errorf("failed to write %d year series: %w", years, err)
		}
		name := fmt.Sprintf("%dy", years)
		fmt.Printf("Benchmarking %s (%s)\n", name, path)

		for _, c := range config.Cases {
			results = append(results, runBenchmarkSuite(config, name, path, c))
		}
	}

	return results, nil
}

// runBenchmarkSuite runs both untracked and tracked benchmarks for a case
func runBenchmarkSuite(config BenchmarkConfig, series, path string, c BenchmarkCase) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", c.Name, series)

	// Helper to run a benchmark phase
	runPhase := func(storeBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, c.Args, storeBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: Untracked runs
	_, noTrackAvg := runPhase("none", config.NoTrackRuns, "Untracked")

	// Phase 2: Tracked runs
	coldTime, warmAvg := runPhase("sqlite", config.TrackRuns, "Tracked")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  Untracked average: %s, Cold time: %s, Warm average: %s\n", noTrackAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Series:      series,
		Command:     c.Name,
		NoTrackTime: noTrackAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a gapcheck check multiple times with the given store backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path, extraArgs, storeBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{"check", path, "--store-backend", storeBackend}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("gapcheck", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Check completed in") &&
		strings.Contains(outputStr, "periods missing under policy")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/gapcheck_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"series", "case", "untracked_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Series, result.Command, result.NoTrackTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, c := range config.Cases {
		fmt.Printf("%s:\n", c.Name)
		for _, result := range results {
			if result.Command == c.Name {
				fmt.Printf("  %-6s: Untracked: %s, Cold: %s, Warm: %s\n", result.Series, result.NoTrackTime, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
