// Package cal implements the climate calendars used to lay out daily time axes.
//
// Every calendar maps a Date to a day number and back, which is all the
// resampling engine needs: day counts between boundaries and complete
// synthetic daily ranges never assume Gregorian arithmetic.
package cal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/gapcheck/schema"
)

// ErrUnknownCalendar is returned by Lookup for names outside the supported set.
var ErrUnknownCalendar = errors.New("unknown calendar")

// Date is a calendar-agnostic day. A Date is only meaningful together with the
// Calendar that produced it: 2001-02-30 exists in the 360_day calendar only.
type Date struct {
	Year  int
	Month int
	Day   int
}

// NewDate is a shorthand for building a Date literal.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(d.Month, o.Month)
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParseDate parses YYYY-MM-DD. A trailing time component separated by 'T' or a
// space is accepted and ignored, since the engine works at daily resolution.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		nums[i] = v
	}
	return Date{Year: nums[0], Month: nums[1], Day: nums[2]}, nil
}

// Calendar is the capability the engine needs from a calendar system.
type Calendar interface {
	// Name returns the canonical CF name of the calendar.
	Name() schema.CalendarName

	// DaysInMonth returns the length of the given month.
	DaysInMonth(year, month int) int

	// DayNumber returns the number of days between the calendar epoch and d.
	DayNumber(d Date) int

	// FromDayNumber is the inverse of DayNumber.
	FromDayNumber(n int) Date
}

// Lookup resolves a calendar by its CF name or alias. The empty name is the standard calendar.
func Lookup(name schema.CalendarName) (Calendar, error) {
	switch schema.CalendarName(strings.ToLower(strings.TrimSpace(string(name)))) {
	case "", schema.StandardCalendar, schema.GregorianCalendar, schema.ProlepticGregorianCalendar:
		return Standard, nil
	case schema.JulianCalendar:
		return Julian, nil
	case schema.NoLeapCalendar, schema.Day365Calendar:
		return NoLeap, nil
	case schema.AllLeapCalendar, schema.Day366Calendar:
		return AllLeap, nil
	case schema.Day360Calendar:
		return Day360, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCalendar, name)
	}
}

// Valid reports whether d exists in calendar c.
func Valid(c Calendar, d Date) bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= c.DaysInMonth(d.Year, d.Month)
}

// AddDays shifts d by n days.
func AddDays(c Calendar, d Date, n int) Date {
	return c.FromDayNumber(c.DayNumber(d) + n)
}

// DaysBetween returns the signed number of days from a to b.
func DaysBetween(c Calendar, a, b Date) int {
	return c.DayNumber(b) - c.DayNumber(a)
}

// DayOfYear returns the 1-based ordinal of d within its year.
func DayOfYear(c Calendar, d Date) int {
	return DaysBetween(c, Date{Year: d.Year, Month: 1, Day: 1}, d) + 1
}

// ShiftMonth moves a (year, month) pair by n months.
func ShiftMonth(year, month, n int) (int, int) {
	idx := year*12 + (month - 1) + n
	y := floorDiv(idx, 12)
	return y, idx - y*12 + 1
}

// Range builds the complete daily axis from start to end, both inclusive.
// It returns nil when end is before start.
func Range(c Calendar, start, end Date) []Date {
	first, last := c.DayNumber(start), c.DayNumber(end)
	if last < first {
		return nil
	}
	out := make([]Date, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, c.FromDayNumber(n))
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
