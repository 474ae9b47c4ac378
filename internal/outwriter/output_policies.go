package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/schema"

	"github.com/olekukonko/tablewriter"
)

// PrintPolicies displays every registered missingness policy with its options.
// This is a static display that does not read any series.
func PrintPolicies(infos []schema.PolicyInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, infos)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePoliciesCSV(w, infos)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for policy listings")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePoliciesText(w, infos)
		}, "Wrote text")
	}
}

// writePoliciesText renders the policies as a table.
func writePoliciesText(w io.Writer, infos []schema.PolicyInfo) error {
	if _, err := fmt.Fprintf(w, "🧮 Missingness Policies\n\n"); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Policy", "Active", "Builtin", "Options", "Description"})
	var data [][]string
	for _, info := range infos {
		active := ""
		if info.Active {
			active = "*"
		}
		data = append(data, []string{
			string(info.Name),
			active,
			strconv.FormatBool(info.Builtin),
			formatOptions(info.Options),
			info.Description,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writePoliciesCSV writes one CSV record per policy.
func writePoliciesCSV(w io.Writer, infos []schema.PolicyInfo) error {
	header := []string{"policy", "active", "builtin", "options", "description"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, info := range infos {
			rec := []string{
				string(info.Name),
				strconv.FormatBool(info.Active),
				strconv.FormatBool(info.Builtin),
				formatOptions(info.Options),
				info.Description,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// formatOptions renders an option map as sorted key=value pairs.
func formatOptions(opts map[string]any) string {
	parts := make([]string, 0, len(opts))
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, opts[k]))
	}
	return strings.Join(parts, " ")
}
