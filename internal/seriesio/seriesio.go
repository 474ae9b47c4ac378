// Package seriesio loads daily series from CSV or Parquet files.
package seriesio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/internal/parquet"
)

// Table is a loaded series: timestamps in file order and values with NaN for nulls.
type Table struct {
	Times  []cal.Date
	Values []float64
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Times) }

// nullTokens are cell values read as null.
var nullTokens = []string{"", "na", "nan", "null", "none", "-"}

// Load reads the series at path. Files ending in .parquet are read as Parquet
// with time and value columns; anything else is read as CSV with a header row.
func Load(path, timeColumn, valueColumn string) (Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		if timeColumn != contract.DefaultTimeColumn || valueColumn != contract.DefaultValueColumn {
			return Table{}, fmt.Errorf("parquet series must use the %q and %q columns", contract.DefaultTimeColumn, contract.DefaultValueColumn)
		}
		return LoadParquet(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open series %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f, timeColumn, valueColumn)
}

// ReadCSV reads a series from CSV. The header row names the columns.
func ReadCSV(r io.Reader, timeColumn, valueColumn string) (Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("series has no header row")
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	timeIdx := slices.Index(header, timeColumn)
	if timeIdx < 0 {
		return Table{}, fmt.Errorf("time column %q not found in header %v", timeColumn, header)
	}
	valueIdx := slices.Index(header, valueColumn)
	if valueIdx < 0 {
		return Table{}, fmt.Errorf("value column %q not found in header %v", valueColumn, header)
	}

	var table Table
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read row %d: %w", table.Len()+2, err)
		}
		if len(record) <= max(timeIdx, valueIdx) {
			return Table{}, fmt.Errorf("row %d has %d fields", table.Len()+2, len(record))
		}
		d, err := cal.ParseDate(record[timeIdx])
		if err != nil {
			return Table{}, fmt.Errorf("row %d: %w", table.Len()+2, err)
		}
		v, err := ParseValue(record[valueIdx])
		if err != nil {
			return Table{}, fmt.Errorf("row %d: %w", table.Len()+2, err)
		}
		table.Times = append(table.Times, d)
		table.Values = append(table.Values, v)
	}
	return table, nil
}

// ParseValue parses a cell, returning NaN for the usual null spellings.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if slices.Contains(nullTokens, strings.ToLower(s)) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

// LoadParquet reads a series written with parquet.WriteSeriesParquet.
func LoadParquet(path string) (Table, error) {
	rows, err := parquet.ReadSeriesParquet(path)
	if err != nil {
		return Table{}, err
	}
	return FromRows(rows)
}

// FromRows converts Parquet rows into a table.
func FromRows(rows []parquet.SeriesRow) (Table, error) {
	table := Table{
		Times:  make([]cal.Date, len(rows)),
		Values: make([]float64, len(rows)),
	}
	for i, row := range rows {
		d, err := cal.ParseDate(row.Time)
		if err != nil {
			return Table{}, fmt.Errorf("row %d: %w", i, err)
		}
		table.Times[i] = d
		table.Values[i] = math.NaN()
		if row.Value != nil {
			table.Values[i] = *row.Value
		}
	}
	return table, nil
}

// ToRows converts a table into Parquet rows.
func ToRows(t Table) []parquet.SeriesRow {
	rows := make([]parquet.SeriesRow, t.Len())
	for i, d := range t.Times {
		rows[i].Time = d.String()
		if v := t.Values[i]; !math.IsNaN(v) {
			rows[i].Value = &v
		}
	}
	return rows
}
