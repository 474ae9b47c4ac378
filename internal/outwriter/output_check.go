package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/internal/parquet"
	"github.com/huangsam/gapcheck/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteCheckResult outputs a check result, dispatching based on the output format configured.
func WriteCheckResult(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPct := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckCSV(w, result, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WritePeriodResultsParquet(parquet.ConvertPeriodOutcomes(result.Periods), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckTable(w, result, cfg, fmtPct, duration)
		}, "Wrote table")
	}
	return nil
}

// checkCSVHeader lists the CSV columns of a check result.
var checkCSVHeader = []string{
	"label",
	"start",
	"end",
	"observed",
	"nulls",
	"expected",
	"missing_fraction",
	"missing",
	"status",
}

// writeCheckCSV writes one CSV record per period.
func writeCheckCSV(w io.Writer, result schema.CheckResult, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, checkCSVHeader, func(cw *csv.Writer) error {
		for _, p := range result.Periods {
			rec := []string{
				p.Label,
				p.Start,
				p.End,
				strconv.Itoa(p.Observed),
				strconv.Itoa(p.Nulls),
				strconv.Itoa(p.Expected),
				fmtFloat(p.MissingFraction),
				strconv.FormatBool(p.Missing),
				contract.GetPlainLabel(p.Missing),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeCheckTable generates and writes the human-readable table.
func writeCheckTable(w io.Writer, result schema.CheckResult, cfg *contract.Config, fmtPct func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	barWidth := getCoverageBarWidth(cfg)

	// 1. Define Headers
	headers := []string{"Period", "Start", "End", "Observed", "Nulls", "Expected", "Missing", "Status"}
	if barWidth > 0 {
		headers = append(headers, "Coverage")
	}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	var data [][]string
	for _, p := range result.Periods {
		row := []string{
			p.Label,
			p.Start,
			p.End,
			strconv.Itoa(p.Observed),
			strconv.Itoa(p.Nulls),
			strconv.Itoa(p.Expected),
			fmtPct(p.MissingFraction),
			label(p.Missing),
		}
		if barWidth > 0 {
			row = append(row, coverageBar(p.MissingFraction, barWidth))
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	policy := string(result.Policy)
	if opts := formatOptions(result.Options); opts != "" {
		policy += " (" + opts + ")"
	}
	if _, err := fmt.Fprintf(w, "%d of %d periods missing under policy %s at freq %s\n",
		result.MissingPeriods, result.TotalPeriods, policy, displayFreq(result.Freq)); err != nil {
		return err
	}
	if result.Indexer != "" {
		if _, err := fmt.Fprintf(w, "Indexer: %s\n", result.Indexer); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Check completed in %v. Calendar: %s. Store backend: %s\n", duration, result.Calendar, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// displayFreq names the whole-series period when no frequency is set.
func displayFreq(freq string) string {
	if freq == "" {
		return "(whole series)"
	}
	return freq
}
