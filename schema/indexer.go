package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Indexer selects a sub-annual part of a daily series before it is partitioned.
// At most one selector may be set; the zero value selects everything.
type Indexer struct {
	Seasons    []Season    `json:"season,omitempty" validate:"dive,oneof=DJF MAM JJA SON"`
	Months     []int       `json:"month,omitempty" validate:"dive,min=1,max=12"`
	DOYBounds  *DOYBounds  `json:"doy_bounds,omitempty"`
	DateBounds *DateBounds `json:"date_bounds,omitempty"`
}

// DOYBounds selects an inclusive day-of-year range. Start > End wraps around the new year.
type DOYBounds struct {
	Start int `json:"start" validate:"min=1,max=366"`
	End   int `json:"end" validate:"min=1,max=366"`
}

// DateBounds selects an inclusive MM-DD range. Start > End wraps around the new year.
type DateBounds struct {
	Start string `json:"start" validate:"monthday"`
	End   string `json:"end" validate:"monthday"`
}

// IsEmpty reports whether no selector is set.
func (ix Indexer) IsEmpty() bool {
	return ix.SelectorCount() == 0
}

// SelectorCount returns how many selectors are set.
func (ix Indexer) SelectorCount() int {
	n := 0
	if len(ix.Seasons) > 0 {
		n++
	}
	if len(ix.Months) > 0 {
		n++
	}
	if ix.DOYBounds != nil {
		n++
	}
	if ix.DateBounds != nil {
		n++
	}
	return n
}

// String renders the indexer the way it is written on the command line.
func (ix Indexer) String() string {
	var parts []string
	if len(ix.Seasons) > 0 {
		s := make([]string, len(ix.Seasons))
		for i, season := range ix.Seasons {
			s[i] = string(season)
		}
		parts = append(parts, "season="+strings.Join(s, ","))
	}
	if len(ix.Months) > 0 {
		s := make([]string, len(ix.Months))
		for i, m := range ix.Months {
			s[i] = strconv.Itoa(m)
		}
		parts = append(parts, "month="+strings.Join(s, ","))
	}
	if ix.DOYBounds != nil {
		parts = append(parts, fmt.Sprintf("doy_bounds=%d:%d", ix.DOYBounds.Start, ix.DOYBounds.End))
	}
	if ix.DateBounds != nil {
		parts = append(parts, fmt.Sprintf("date_bounds=%s:%s", ix.DateBounds.Start, ix.DateBounds.End))
	}
	return strings.Join(parts, " ")
}

// ParseMonthDay parses an MM-DD string.
func ParseMonthDay(s string) (month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month-day %q: expected MM-DD", s)
	}
	month, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	day, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("month-day %q out of range", s)
	}
	return month, day, nil
}
