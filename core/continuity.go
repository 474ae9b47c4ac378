package core

import (
	"fmt"

	"github.com/huangsam/gapcheck/core/cal"
)

// AssertDaily checks that s is a strict daily record: non-empty, every
// timestamp valid in its calendar, no duplicates and no gaps.
// Failures wrap ErrNotDaily and name the first offending date.
func AssertDaily(s Series) error {
	if s.Calendar == nil {
		return fmt.Errorf("%w: calendar is not set", ErrNotDaily)
	}
	if s.Len() == 0 {
		return fmt.Errorf("%w: series is empty", ErrNotDaily)
	}
	c := s.Calendar
	for i, t := range s.Times {
		if !cal.Valid(c, t) {
			return fmt.Errorf("%w: %s does not exist in the %s calendar", ErrNotDaily, t, c.Name())
		}
		if i == 0 {
			continue
		}
		switch step := cal.DaysBetween(c, s.Times[i-1], t); {
		case step == 0:
			return fmt.Errorf("%w: duplicate timestamp %s", ErrNotDaily, t)
		case step < 0:
			return fmt.Errorf("%w: %s comes after %s", ErrNotDaily, t, s.Times[i-1])
		case step > 1:
			return fmt.Errorf("%w: %d day gap after %s", ErrNotDaily, step-1, s.Times[i-1])
		}
	}
	return nil
}
