package core

import (
	"fmt"
	"slices"

	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/schema"
)

// ValidateIndexer checks that at most one selector is set and that its values are in range.
func ValidateIndexer(ix schema.Indexer) error {
	if ix.SelectorCount() > 1 {
		return fmt.Errorf("%w: only one of season, month, doy_bounds or date_bounds may be given", ErrInvalidIndexer)
	}
	return validateStruct(ErrInvalidIndexer, ix)
}

// Select returns the part of s matched by ix. An empty indexer returns s unchanged.
// It fails with ErrEmptySelection when nothing matches.
func Select(s Series, ix schema.Indexer) (Series, error) {
	if err := ValidateIndexer(ix); err != nil {
		return Series{}, err
	}
	selected := s
	if !ix.IsEmpty() {
		match := indexerMatcher(s.Calendar, ix)
		selected = s.filter(match)
	}
	if selected.Len() == 0 {
		return Series{}, ErrEmptySelection
	}
	return selected, nil
}

// indexerMatcher compiles a validated, non-empty indexer into a predicate.
func indexerMatcher(c cal.Calendar, ix schema.Indexer) func(cal.Date) bool {
	switch {
	case len(ix.Seasons) > 0:
		var months []int
		for _, season := range ix.Seasons {
			months = append(months, schema.SeasonMonths[season]...)
		}
		return monthMatcher(months)
	case len(ix.Months) > 0:
		return monthMatcher(ix.Months)
	case ix.DOYBounds != nil:
		lo, hi := ix.DOYBounds.Start, ix.DOYBounds.End
		return func(d cal.Date) bool {
			return inBounds(cal.DayOfYear(c, d), lo, hi)
		}
	case ix.DateBounds != nil:
		// Bounds were validated, errors cannot happen here.
		sm, sd, _ := schema.ParseMonthDay(ix.DateBounds.Start)
		em, ed, _ := schema.ParseMonthDay(ix.DateBounds.End)
		lo, hi := sm*100+sd, em*100+ed
		return func(d cal.Date) bool {
			return inBounds(d.Month*100+d.Day, lo, hi)
		}
	default:
		return func(cal.Date) bool { return true }
	}
}

func monthMatcher(months []int) func(cal.Date) bool {
	return func(d cal.Date) bool {
		return slices.Contains(months, d.Month)
	}
}

// inBounds is an inclusive range check that wraps when lo > hi.
func inBounds(v, lo, hi int) bool {
	if lo <= hi {
		return v >= lo && v <= hi
	}
	return v >= lo || v <= hi
}
