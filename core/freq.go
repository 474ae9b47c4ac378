package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/gapcheck/core/cal"
)

// FreqUnit is the base unit of a resampling frequency.
type FreqUnit int

// Supported base units. NoUnit means the whole series is one period.
const (
	NoUnit FreqUnit = iota
	DayUnit
	MonthUnit
	QuarterUnit
	YearUnit
)

var monthAbbrevs = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// Frequency is a parsed resampling token such as "MS", "YS" or "Q-NOV".
type Frequency struct {
	Token string
	Unit  FreqUnit
	// StartAnchored periods are labeled by their first day, the others by their last day.
	StartAnchored bool
	// Anchor is the month a quarterly or yearly period starts in (start-anchored)
	// or ends in (end-anchored). It is zero for daily and monthly frequencies.
	Anchor int
}

// SplitFreq splits a frequency token into its base and anchor parts.
func SplitFreq(token string) (base, anchor string) {
	base, anchor, _ = strings.Cut(strings.ToUpper(strings.TrimSpace(token)), "-")
	return base, anchor
}

// ParseFrequency parses a resampling token. The empty token means no resampling.
func ParseFrequency(token string) (Frequency, error) {
	base, anchor := SplitFreq(token)
	f := Frequency{Token: strings.TrimSpace(token)}
	switch base {
	case "":
		if anchor != "" {
			return Frequency{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, token)
		}
		return f, nil
	case "D":
		f.Unit, f.StartAnchored = DayUnit, true
	case "MS":
		f.Unit, f.StartAnchored = MonthUnit, true
	case "M", "ME":
		f.Unit = MonthUnit
	case "QS":
		f.Unit, f.StartAnchored, f.Anchor = QuarterUnit, true, 1
	case "Q", "QE":
		f.Unit, f.Anchor = QuarterUnit, 12
	case "YS", "AS":
		f.Unit, f.StartAnchored, f.Anchor = YearUnit, true, 1
	case "Y", "A", "YE":
		f.Unit, f.Anchor = YearUnit, 12
	default:
		return Frequency{}, fmt.Errorf("%w: unsupported base %q in %q", ErrInvalidFrequency, base, token)
	}

	if anchor != "" {
		if f.Unit != QuarterUnit && f.Unit != YearUnit {
			return Frequency{}, fmt.Errorf("%w: %q does not take an anchor", ErrInvalidFrequency, token)
		}
		month, ok := monthAbbrevs[anchor]
		if !ok {
			return Frequency{}, fmt.Errorf("%w: unknown anchor month %q in %q", ErrInvalidFrequency, anchor, token)
		}
		f.Anchor = month
	}
	return f, nil
}

// IsEmpty reports whether the frequency means "no resampling".
func (f Frequency) IsEmpty() bool { return f.Unit == NoUnit }

// IsMonthly reports whether periods are calendar months.
func (f Frequency) IsMonthly() bool { return f.Unit == MonthUnit }

// String returns the token the frequency was parsed from.
func (f Frequency) String() string { return f.Token }

// spanMonths is the number of months in one month-based period.
func (f Frequency) spanMonths() int {
	switch f.Unit {
	case QuarterUnit:
		return 3
	case YearUnit:
		return 12
	default:
		return 1
	}
}

// firstMonth is a month in which periods begin.
func (f Frequency) firstMonth() int {
	switch {
	case f.Anchor == 0:
		return 1
	case f.StartAnchored:
		return f.Anchor
	default:
		return f.Anchor%12 + 1
	}
}

// PeriodStart returns the first day of the period that contains d.
func (f Frequency) PeriodStart(c cal.Calendar, d cal.Date) cal.Date {
	if f.Unit == DayUnit {
		return d
	}
	n := f.spanMonths()
	offset := ((d.Month-f.firstMonth())%n + n) % n
	y, m := cal.ShiftMonth(d.Year, d.Month, -offset)
	return cal.NewDate(y, m, 1)
}

// NextStart returns the first day of the period following the one starting at start.
func (f Frequency) NextStart(c cal.Calendar, start cal.Date) cal.Date {
	if f.Unit == DayUnit {
		return cal.AddDays(c, start, 1)
	}
	y, m := cal.ShiftMonth(start.Year, start.Month, f.spanMonths())
	return cal.NewDate(y, m, 1)
}

// Label returns the date a period is labeled with: its first day for
// start-anchored frequencies and its last day otherwise.
func (f Frequency) Label(start, end cal.Date) cal.Date {
	if f.StartAnchored || f.IsEmpty() {
		return start
	}
	return end
}
