package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/schema"
)

// WriteContinuityReport outputs a daily continuity report in the configured format.
func WriteContinuityReport(report schema.ContinuityReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContinuityCSV(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for continuity reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContinuityText(w, report, cfg.UseColors)
		}, "Wrote text")
	}
}

// writeContinuityCSV writes the report as a single CSV record.
func writeContinuityCSV(w io.Writer, report schema.ContinuityReport) error {
	header := []string{"input", "calendar", "first", "last", "length", "daily", "problem"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			report.Input,
			string(report.Calendar),
			report.First,
			report.Last,
			strconv.Itoa(report.Length),
			strconv.FormatBool(report.Daily),
			report.Problem,
		})
	})
}

// writeContinuityText writes a short human-readable verdict.
func writeContinuityText(w io.Writer, report schema.ContinuityReport, useColors bool) error {
	verdict := "✅ strictly daily"
	paint := fmt.Sprint
	if !report.Daily {
		verdict = "❌ not strictly daily"
		if useColors {
			paint = color.New(color.FgRed, color.Bold).SprintFunc()
		}
	} else if useColors {
		paint = color.New(color.FgGreen).SprintFunc()
	}

	if _, err := fmt.Fprintf(w, "%s: %s\n", report.Input, paint(verdict)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Calendar: %s\n", report.Calendar); err != nil {
		return err
	}
	if report.Length > 0 {
		if _, err := fmt.Fprintf(w, "Span: %s to %s (%d steps)\n", report.First, report.Last, report.Length); err != nil {
			return err
		}
	}
	if report.Problem != "" {
		if _, err := fmt.Fprintf(w, "Problem: %s\n", report.Problem); err != nil {
			return err
		}
	}
	return nil
}
