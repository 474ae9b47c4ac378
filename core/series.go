package core

import (
	"fmt"
	"math"

	"github.com/huangsam/gapcheck/core/cal"
)

// Series is a daily time series. Null values are NaN.
// The engine never mutates a Series it receives.
type Series struct {
	Calendar cal.Calendar
	Times    []cal.Date
	Values   []float64
}

// NewSeries builds a Series and checks its invariants.
func NewSeries(c cal.Calendar, times []cal.Date, values []float64) (Series, error) {
	s := Series{Calendar: c, Times: times, Values: values}
	if err := s.Validate(); err != nil {
		return Series{}, err
	}
	return s, nil
}

// NewDailySeries lays values out on consecutive days starting at start.
func NewDailySeries(c cal.Calendar, start cal.Date, values []float64) Series {
	times := make([]cal.Date, len(values))
	first := c.DayNumber(start)
	for i := range values {
		times[i] = c.FromDayNumber(first + i)
	}
	return Series{Calendar: c, Times: times, Values: values}
}

// NewSyntheticSeries builds a fully populated daily series from start to end inclusive.
func NewSyntheticSeries(c cal.Calendar, start, end cal.Date) Series {
	times := cal.Range(c, start, end)
	values := make([]float64, len(times))
	for i := range values {
		values[i] = 1
	}
	return Series{Calendar: c, Times: times, Values: values}
}

// Validate checks that the calendar is set, lengths agree, every timestamp exists
// in the calendar and timestamps are strictly increasing.
func (s Series) Validate() error {
	if s.Calendar == nil {
		return fmt.Errorf("%w: calendar is not set", ErrInvalidSeries)
	}
	if len(s.Times) != len(s.Values) {
		return fmt.Errorf("%w: %d timestamps but %d values", ErrInvalidSeries, len(s.Times), len(s.Values))
	}
	for i, t := range s.Times {
		if !cal.Valid(s.Calendar, t) {
			return fmt.Errorf("%w: %s does not exist in the %s calendar", ErrInvalidSeries, t, s.Calendar.Name())
		}
		if i > 0 && !s.Times[i-1].Before(t) {
			return fmt.Errorf("%w: timestamps must be strictly increasing (%s then %s)", ErrInvalidSeries, s.Times[i-1], t)
		}
	}
	return nil
}

// Len returns the number of timestamps.
func (s Series) Len() int { return len(s.Times) }

// First returns the first timestamp. The series must not be empty.
func (s Series) First() cal.Date { return s.Times[0] }

// Last returns the last timestamp. The series must not be empty.
func (s Series) Last() cal.Date { return s.Times[len(s.Times)-1] }

// IsNull returns one flag per timestamp, true where the value is absent.
func (s Series) IsNull() []bool {
	null := make([]bool, len(s.Values))
	for i, v := range s.Values {
		null[i] = math.IsNaN(v)
	}
	return null
}

// filter returns the sub-series whose timestamps satisfy keep.
func (s Series) filter(keep func(cal.Date) bool) Series {
	out := Series{Calendar: s.Calendar}
	for i, t := range s.Times {
		if keep(t) {
			out.Times = append(out.Times, t)
			out.Values = append(out.Values, s.Values[i])
		}
	}
	return out
}
