package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Period label constants.
const (
	MissingValue  = "Missing"  // Missing value
	CompleteValue = "Complete" // Complete value
)

// Color variables for console output.
var (
	MissingColor  = color.New(color.FgRed, color.Bold) // MissingColor flags an untrustworthy period.
	CompleteColor = color.New(color.FgCyan)            // CompleteColor is informational.
)

// GetPlainLabel returns a plain text label for a period verdict.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(missing bool) string {
	if missing {
		return MissingValue
	}
	return CompleteValue
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(missing bool) string {
	text := GetPlainLabel(missing)
	if missing {
		return MissingColor.Sprint(text)
	}
	return CompleteColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gapcheck_runs.db"
	}
	return filepath.Join(homeDir, ".gapcheck_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
