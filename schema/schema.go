// Package schema has shared types, enums and output records for all parts of gapcheck.
package schema

// PeriodOutcome is the verdict for a single resampled period.
type PeriodOutcome struct {
	Label           string  `json:"label"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	Observed        int     `json:"observed"`
	Nulls           int     `json:"nulls"`
	Expected        int     `json:"expected"`
	MissingFraction float64 `json:"missing_fraction"`
	Missing         bool    `json:"missing"`
}

// CheckResult holds the outcome of one missingness check over an input series.
type CheckResult struct {
	Input          string          `json:"input"`
	Calendar       CalendarName    `json:"calendar"`
	Freq           string          `json:"freq"`
	Indexer        string          `json:"indexer,omitempty"`
	Policy         PolicyName      `json:"policy"`
	Options        map[string]any  `json:"options,omitempty"`
	TotalPeriods   int             `json:"total_periods"`
	MissingPeriods int             `json:"missing_periods"`
	Periods        []PeriodOutcome `json:"periods"`
}

// Flags returns the missing flag of every period in order.
func (r CheckResult) Flags() []bool {
	flags := make([]bool, len(r.Periods))
	for i, p := range r.Periods {
		flags[i] = p.Missing
	}
	return flags
}

// ContinuityReport is the outcome of a strict daily-continuity assertion.
type ContinuityReport struct {
	Input    string       `json:"input"`
	Calendar CalendarName `json:"calendar"`
	First    string       `json:"first,omitempty"`
	Last     string       `json:"last,omitempty"`
	Length   int          `json:"length"`
	Daily    bool         `json:"daily"`
	Problem  string       `json:"problem,omitempty"`
}

// PolicyInfo describes a registered missingness policy.
type PolicyInfo struct {
	Name        PolicyName     `json:"name"`
	Description string         `json:"description"`
	Builtin     bool           `json:"builtin"`
	Active      bool           `json:"active"`
	Options     map[string]any `json:"options,omitempty"`
}
