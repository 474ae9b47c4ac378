package core

import (
	"github.com/huangsam/gapcheck/core/algo"
	"github.com/huangsam/gapcheck/core/cal"
)

// Period is one resampling bucket of a (possibly selected) series.
// Start and End are inclusive; Nulls holds one flag per observed timestamp.
type Period struct {
	Label cal.Date
	Start cal.Date
	End   cal.Date
	Nulls []bool
}

// Observed is the number of timestamps present in the period.
func (p Period) Observed() int { return len(p.Nulls) }

// NullCount is the number of null values in the period.
func (p Period) NullCount() int { return algo.CountTrue(p.Nulls) }

// Partition splits a non-empty series into consecutive periods of freq.
// Periods without timestamps between the first and last one are still emitted.
// With an empty frequency the whole series is a single period spanning
// span.First() to span.Last(), so that a selection reports against the
// bounds of the series it was taken from.
func Partition(s Series, freq Frequency, span Series) []Period {
	nulls := s.IsNull()
	if freq.IsEmpty() {
		return []Period{{
			Label: span.First(),
			Start: span.First(),
			End:   span.Last(),
			Nulls: nulls,
		}}
	}

	c := s.Calendar
	last := freq.PeriodStart(c, s.Last())
	var periods []Period
	i := 0
	for start := freq.PeriodStart(c, s.First()); !last.Before(start); {
		next := freq.NextStart(c, start)
		j := i
		for j < len(s.Times) && s.Times[j].Before(next) {
			j++
		}
		end := cal.AddDays(c, next, -1)
		periods = append(periods, Period{
			Label: freq.Label(start, end),
			Start: start,
			End:   end,
			Nulls: nulls[i:j:j],
		})
		i = j
		start = next
	}
	return periods
}

// periodIndex maps each timestamp of times (sorted) to the period that holds it, or -1.
func periodIndex(times []cal.Date, periods []Period) []int {
	idx := make([]int, len(times))
	p := 0
	for i, t := range times {
		for p < len(periods) && periods[p].End.Before(t) {
			p++
		}
		if p < len(periods) && !t.Before(periods[p].Start) {
			idx[i] = p
		} else {
			idx[i] = -1
		}
	}
	return idx
}
