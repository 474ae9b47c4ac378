package core

import (
	"context"
	"fmt"

	"github.com/huangsam/gapcheck/core/algo"
	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/schema"
)

// Missing is a prepared classification: the series has been selected and
// partitioned, and the expected count of every period is known.
// Evaluate runs the policy over it.
type Missing struct {
	policy   Policy
	calendar cal.Calendar
	freq     Frequency
	periods  []Period
	expected []int
}

// Result is the classification of every period of a series.
type Result struct {
	Policy   schema.PolicyName
	Freq     Frequency
	Periods  []Period
	Expected []int
	Missing  []bool
}

// NewMissing prepares policy over s partitioned by freq after selecting ix.
// Frequency problems fail here, before any parameter is looked at.
func NewMissing(policy Policy, s Series, freq string, ix schema.Indexer) (*Missing, error) {
	if policy == nil {
		return nil, fmt.Errorf("%w: no policy given", ErrUnknownPolicy)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	f, err := ParseFrequency(freq)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckFrequency(f); err != nil {
		return nil, err
	}
	selected, err := Select(s, ix)
	if err != nil {
		return nil, err
	}
	periods := Partition(selected, f, s)
	return &Missing{
		policy:   policy,
		calendar: s.Calendar,
		freq:     f,
		periods:  periods,
		expected: ExpectedCounts(s.Calendar, periods, ix),
	}, nil
}

// Evaluate validates the policy parameters and classifies every period.
func (m *Missing) Evaluate() (*Result, error) {
	if err := m.policy.Validate(); err != nil {
		return nil, err
	}
	flags := make([]bool, len(m.periods))
	for i, p := range m.periods {
		flags[i] = m.policy.IsMissing(p, m.expected[i])
	}
	return &Result{
		Policy:   m.policy.Name(),
		Freq:     m.freq,
		Periods:  m.periods,
		Expected: m.expected,
		Missing:  flags,
	}, nil
}

// MissingCount returns how many periods are flagged.
func (r *Result) MissingCount() int { return algo.CountTrue(r.Missing) }

// Outcomes renders every period as an output record.
func (r *Result) Outcomes() []schema.PeriodOutcome {
	out := make([]schema.PeriodOutcome, len(r.Periods))
	for i, p := range r.Periods {
		out[i] = schema.PeriodOutcome{
			Label:           p.Label.String(),
			Start:           p.Start.String(),
			End:             p.End.String(),
			Observed:        p.Observed(),
			Nulls:           p.NullCount(),
			Expected:        r.Expected[i],
			MissingFraction: MissingFraction(p, r.Expected[i]),
			Missing:         r.Missing[i],
		}
	}
	return out
}

func evaluate(policy Policy, s Series, freq string, ix schema.Indexer) (*Result, error) {
	m, err := NewMissing(policy, s, freq, ix)
	if err != nil {
		return nil, err
	}
	return m.Evaluate()
}

// MissingAny flags periods with any absent or null day.
func MissingAny(s Series, freq string, ix schema.Indexer) (*Result, error) {
	return evaluate(AnyPolicy{}, s, freq, ix)
}

// MissingPct flags periods whose missing fraction reaches tolerance.
func MissingPct(s Series, freq string, tolerance float64, ix schema.Indexer) (*Result, error) {
	return evaluate(PctPolicy{Tolerance: tolerance}, s, freq, ix)
}

// AtLeastNValid flags periods holding fewer than n valid values.
func AtLeastNValid(s Series, freq string, n int, ix schema.Indexer) (*Result, error) {
	return evaluate(AtLeastNPolicy{N: n}, s, freq, ix)
}

// MissingWMO applies the WMO rule month by month and flags a period of freq
// when any of its months is missing. freq may be monthly or coarser; the
// empty frequency collapses all months into one period.
func MissingWMO(s Series, freq string, nm, nc int, ix schema.Indexer) (*Result, error) {
	target, err := ParseFrequency(freq)
	if err != nil {
		return nil, err
	}
	if target.Unit == DayUnit {
		return nil, fmt.Errorf("%w: the wmo rule cannot be resampled to %q", ErrInvalidFrequency, freq)
	}
	monthly, err := evaluate(WMOPolicy{NM: nm, NC: nc}, s, "MS", ix)
	if err != nil {
		return nil, err
	}
	return regroup(s.Calendar, monthly, target), nil
}

// regroup merges the periods of r into the coarser frequency target,
// ORing the missing flags of the merged periods.
func regroup(c cal.Calendar, r *Result, target Frequency) *Result {
	if len(r.Periods) == 0 {
		return r
	}
	var groups []Period
	groupOf := make([]int, len(r.Periods))
	for i, p := range r.Periods {
		start, end := r.Periods[0].Start, r.Periods[len(r.Periods)-1].End
		if !target.IsEmpty() {
			start = target.PeriodStart(c, p.Start)
			end = cal.AddDays(c, target.NextStart(c, start), -1)
		}
		if n := len(groups); n == 0 || groups[n-1].Start != start {
			groups = append(groups, Period{Label: target.Label(start, end), Start: start, End: end})
		}
		g := len(groups) - 1
		groups[g].Nulls = append(groups[g].Nulls, p.Nulls...)
		groupOf[i] = g
	}

	expected := make([]int, len(groups))
	for i, g := range groupOf {
		expected[g] += r.Expected[i]
	}
	return &Result{
		Policy:   r.Policy,
		Freq:     target,
		Periods:  groups,
		Expected: expected,
		Missing:  algo.GroupAny(r.Missing, groupOf, len(groups)),
	}
}

// MissingFromContext classifies s with the policy and options active in ctx,
// falling back to the process-wide options.
func MissingFromContext(ctx context.Context, s Series, freq string, ix schema.Indexer) (*Result, error) {
	opts := OptionsFromContext(ctx)
	policy, err := DefaultRegistry.Build(opts.Policy, opts.PolicyOptions[opts.Policy])
	if err != nil {
		return nil, err
	}
	return evaluate(policy, s, freq, ix)
}
