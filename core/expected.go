package core

import (
	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/schema"
)

// ExpectedCounts returns how many timestamps each period would hold if the
// record were complete. Without an indexer that is the period length in days
// of the calendar; with one, a complete synthetic daily series is built over
// all periods and passed through the same selection. With an empty frequency
// the single period spans the bounds of the original series.
func ExpectedCounts(c cal.Calendar, periods []Period, ix schema.Indexer) []int {
	expected := make([]int, len(periods))
	if len(periods) == 0 {
		return expected
	}
	if ix.IsEmpty() {
		for i, p := range periods {
			expected[i] = cal.DaysBetween(c, p.Start, p.End) + 1
		}
		return expected
	}

	full := NewSyntheticSeries(c, periods[0].Start, periods[len(periods)-1].End)
	selected := full.filter(indexerMatcher(c, ix))
	for _, p := range periodIndex(selected.Times, periods) {
		if p >= 0 {
			expected[p]++
		}
	}
	return expected
}
