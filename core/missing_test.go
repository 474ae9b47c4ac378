package core

import (
	"context"
	"math"
	"testing"

	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// complete returns n consecutive days of valid values starting at start.
func complete(t *testing.T, c cal.Calendar, start string, n int) Series {
	t.Helper()
	d, err := cal.ParseDate(start)
	require.NoError(t, err)
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	return NewDailySeries(c, d, values)
}

// withNulls returns a copy of s with the values at idx set to NaN.
func withNulls(s Series, idx ...int) Series {
	values := append([]float64(nil), s.Values...)
	for _, i := range idx {
		values[i] = math.NaN()
	}
	return Series{Calendar: s.Calendar, Times: s.Times, Values: values}
}

// without returns a copy of s with the timestamps at idx removed.
func without(s Series, idx ...int) Series {
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		drop[i] = true
	}
	out := Series{Calendar: s.Calendar}
	for i := range s.Times {
		if !drop[i] {
			out.Times = append(out.Times, s.Times[i])
			out.Values = append(out.Values, s.Values[i])
		}
	}
	return out
}

func TestMissingAnyScenarios(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		length   int
		freq     string
		expected []bool
	}{
		{"partial first and last month", "2001-12-30", 66, "MS", []bool{true, false, false, true}},
		{"year start", "2001-12-31", 378, "YS", []bool{true, false, true}},
		{"quarters ending in november", "2001-12-31", 378, "Q-NOV", []bool{true, false, false, false, true}},
		{"full non-leap year", "2001-01-01", 365, "YS", []bool{false}},
		{"full leap year", "2004-01-01", 366, "YS", []bool{false}},
		{"whole series", "2001-03-10", 40, "", []bool{false}},
		{"daily", "2001-03-10", 5, "D", []bool{false, false, false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := complete(t, cal.Standard, tt.start, tt.length)
			res, err := MissingAny(s, tt.freq, schema.Indexer{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Missing)
		})
	}
}

func TestMissingAnyRemovingOneDayFlagsPeriod(t *testing.T) {
	s := complete(t, cal.Standard, "2001-01-01", 365)

	for _, day := range []int{0, 45, 180, 364} {
		res, err := MissingAny(without(s, day), "YS", schema.Indexer{})
		require.NoError(t, err)
		assert.Equal(t, []bool{true}, res.Missing, "day %d", day)
	}

	res, err := MissingAny(withNulls(s, 100), "MS", schema.Indexer{})
	require.NoError(t, err)
	assert.True(t, res.Missing[3])
	assert.Equal(t, 1, res.MissingCount())
}

func TestMissingAnyEmitsEmptyPeriods(t *testing.T) {
	// January and April only; February and March have no timestamp at all.
	jan := complete(t, cal.Standard, "2001-01-01", 31)
	apr := complete(t, cal.Standard, "2001-04-01", 30)
	s := Series{
		Calendar: cal.Standard,
		Times:    append(append([]cal.Date(nil), jan.Times...), apr.Times...),
		Values:   append(append([]float64(nil), jan.Values...), apr.Values...),
	}

	res, err := MissingAny(s, "MS", schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, false}, res.Missing)
	assert.Equal(t, []int{31, 28, 31, 30}, res.Expected)
	assert.Equal(t, 0, res.Periods[1].Observed())
}

func TestMissingPct(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-01-01", 59), 0, 1, 2) // 3 of 31 January days null

	tests := []struct {
		tolerance float64
		expected  []bool
	}{
		{0, []bool{true, true}},
		{0.05, []bool{true, false}},
		{0.1, []bool{false, false}},
		{1, []bool{false, false}},
	}
	for _, tt := range tests {
		res, err := MissingPct(s, "MS", tt.tolerance, schema.Indexer{})
		require.NoError(t, err)
		assert.Equal(t, tt.expected, res.Missing, "tolerance %v", tt.tolerance)
	}
}

func TestMissingPctLenientAtFullTolerance(t *testing.T) {
	s := without(withNulls(complete(t, cal.Standard, "2001-01-01", 365), 10, 11, 70), 200, 201, 202)
	strict, err := MissingPct(s, "MS", 0, schema.Indexer{})
	require.NoError(t, err)
	lenient, err := MissingPct(s, "MS", 1, schema.Indexer{})
	require.NoError(t, err)

	for i := range lenient.Missing {
		if lenient.Missing[i] {
			assert.True(t, strict.Missing[i], "period %d", i)
		}
	}
}

func TestMissingPctNothingExpected(t *testing.T) {
	p := Period{}
	assert.False(t, PctPolicy{Tolerance: 0}.IsMissing(p, 0))
	assert.Zero(t, MissingFraction(p, 0))
}

func TestAtLeastNValid(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-01-01", 31), 0, 1, 2, 3, 4) // 26 valid values

	tests := []struct {
		n        int
		expected bool
	}{
		{1, false},
		{25, false},
		{26, false},
		{27, true},
		{31, true},
	}
	for _, tt := range tests {
		res, err := AtLeastNValid(s, "MS", tt.n, schema.Indexer{})
		require.NoError(t, err)
		assert.Equal(t, []bool{tt.expected}, res.Missing, "n=%d", tt.n)
	}
}

func TestMissingWMOMonthly(t *testing.T) {
	base := complete(t, cal.Standard, "2001-01-01", 59)

	tests := []struct {
		name     string
		series   Series
		expected []bool
	}{
		{"complete", base, []bool{false, false}},
		{"scattered nulls under nm", withNulls(base, 0, 2, 4, 6, 8, 10, 12, 14, 16, 18), []bool{false, false}},
		{"nm reached", withNulls(base, 0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20), []bool{true, false}},
		{"run of nc", withNulls(base, 40, 41, 42, 43, 44), []bool{false, true}},
		{"run under nc", withNulls(base, 40, 41, 42, 43), []bool{false, false}},
		{"absent day", without(base, 50), []bool{false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := MissingWMO(tt.series, "MS", 11, 5, schema.Indexer{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Missing)
		})
	}
}

func TestMissingWMORegroupsToCoarserFrequency(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-01-01", 730), 400, 401, 402, 403, 404)

	res, err := MissingWMO(s, "YS", 11, 5, schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, res.Missing)
	assert.Equal(t, []int{365, 365}, res.Expected)
	assert.Equal(t, 365, res.Periods[1].Observed())
	assert.Equal(t, 5, res.Periods[1].NullCount())
	assert.Equal(t, "YS", res.Freq.Token)

	whole, err := MissingWMO(s, "", 11, 5, schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, whole.Missing)
	assert.Equal(t, []int{730}, whole.Expected)

	quarters, err := MissingWMO(s, "QS-DEC", 11, 5, schema.Indexer{})
	require.NoError(t, err)
	assert.Len(t, quarters.Missing, 9)
	assert.Equal(t, 1, quarters.MissingCount())
}

func TestMissingWMORejectsFrequency(t *testing.T) {
	s := complete(t, cal.Standard, "2001-01-01", 365)

	_, err := MissingWMO(s, "D", 11, 5, schema.Indexer{})
	require.ErrorIs(t, err, ErrInvalidFrequency)

	_, err = NewMissing(WMOPolicy{NM: 11, NC: 5}, s, "YS", schema.Indexer{})
	require.ErrorIs(t, err, ErrInvalidFrequency)

	_, err = NewMissing(WMOPolicy{NM: 11, NC: 5}, s, "D", schema.Indexer{})
	require.ErrorIs(t, err, ErrInvalidFrequency)

	_, err = NewMissing(WMOPolicy{NM: 11, NC: 5}, s, "ME", schema.Indexer{})
	require.NoError(t, err)
}

func TestInvalidParameters(t *testing.T) {
	s := complete(t, cal.Standard, "2001-01-01", 365)

	tests := []struct {
		name string
		run  func() error
	}{
		{"nm too large", func() error { _, err := MissingWMO(s, "MS", 31, 5, schema.Indexer{}); return err }},
		{"nc too large", func() error { _, err := MissingWMO(s, "MS", 11, 31, schema.Indexer{}); return err }},
		{"negative tolerance", func() error { _, err := MissingPct(s, "MS", -0.1, schema.Indexer{}); return err }},
		{"tolerance above one", func() error { _, err := MissingPct(s, "MS", 1.5, schema.Indexer{}); return err }},
		{"zero n", func() error { _, err := AtLeastNValid(s, "MS", 0, schema.Indexer{}); return err }},
		{"negative n", func() error { _, err := AtLeastNValid(s, "MS", -3, schema.Indexer{}); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.run(), ErrInvalidParameter)
		})
	}
}

func TestFrequencyCheckedBeforeParameters(t *testing.T) {
	s := complete(t, cal.Standard, "2001-01-01", 365)

	_, err := NewMissing(WMOPolicy{NM: 40, NC: 40}, s, "YS", schema.Indexer{})
	require.ErrorIs(t, err, ErrInvalidFrequency)
	assert.NotErrorIs(t, err, ErrInvalidParameter)

	_, err = MissingPct(s, "FORTNIGHT", 5, schema.Indexer{})
	require.ErrorIs(t, err, ErrInvalidFrequency)

	m, err := NewMissing(PctPolicy{Tolerance: 5}, s, "MS", schema.Indexer{})
	require.NoError(t, err)
	_, err = m.Evaluate()
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestMissingWithIndexer(t *testing.T) {
	s := complete(t, cal.Standard, "2001-01-01", 730)

	res, err := MissingAny(s, "YS", schema.Indexer{Seasons: []schema.Season{schema.SummerSeason}})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, res.Missing)
	assert.Equal(t, []int{92, 92}, res.Expected)

	res, err = MissingAny(without(s, 200), "YS", schema.Indexer{Months: []int{7}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, res.Missing)

	// Missing days outside the selection do not count.
	res, err = MissingAny(without(s, 10), "YS", schema.Indexer{Months: []int{7}})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, res.Missing)

	_, err = MissingAny(complete(t, cal.Standard, "2001-01-01", 31), "YS", schema.Indexer{Months: []int{7}})
	require.ErrorIs(t, err, ErrEmptySelection)
}

func TestMissingAlternateCalendars(t *testing.T) {
	res, err := MissingAny(complete(t, cal.Day360, "2001-01-01", 360), "MS", schema.Indexer{})
	require.NoError(t, err)
	assert.Len(t, res.Missing, 12)
	assert.Zero(t, res.MissingCount())
	assert.Equal(t, 30, res.Expected[1])

	res, err = MissingAny(complete(t, cal.NoLeap, "2004-01-01", 365), "YS", schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, res.Missing)

	// A standard leap year is short one day under 365 values.
	res, err = MissingAny(complete(t, cal.Standard, "2004-01-01", 365), "YS", schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, res.Missing)
}

func TestNewMissingRejectsBadInput(t *testing.T) {
	s := complete(t, cal.Standard, "2001-01-01", 10)

	_, err := NewMissing(nil, s, "MS", schema.Indexer{})
	require.ErrorIs(t, err, ErrUnknownPolicy)

	reversed := Series{
		Calendar: cal.Standard,
		Times:    []cal.Date{s.Times[1], s.Times[0]},
		Values:   []float64{1, 2},
	}
	_, err = NewMissing(AnyPolicy{}, reversed, "MS", schema.Indexer{})
	require.ErrorIs(t, err, ErrInvalidSeries)
}

func TestResultOutcomes(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-01-30", 5), 1)

	res, err := MissingAny(s, "ME", schema.Indexer{})
	require.NoError(t, err)
	outcomes := res.Outcomes()
	require.Len(t, outcomes, 2)

	assert.Equal(t, schema.PeriodOutcome{
		Label:           "2001-01-31",
		Start:           "2001-01-01",
		End:             "2001-01-31",
		Observed:        2,
		Nulls:           1,
		Expected:        31,
		MissingFraction: 30.0 / 31.0,
		Missing:         true,
	}, outcomes[0])
	assert.Equal(t, "2001-02-28", outcomes[1].Label)
	assert.Equal(t, 3, outcomes[1].Observed)
}

func TestMissingFromContext(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-01-01", 59), 0, 1, 2)

	opts := DefaultOptions()
	opts.Policy = schema.PctPolicy
	opts.PolicyOptions[schema.PctPolicy] = map[string]any{"tolerance": 0.05}
	res, err := MissingFromContext(WithOptions(context.Background(), opts), s, "MS", schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, schema.PctPolicy, res.Policy)
	assert.Equal(t, []bool{true, false}, res.Missing)

	opts.Policy = schema.AtLeastNPolicy
	opts.PolicyOptions[schema.AtLeastNPolicy] = map[string]any{"n": 29}
	res, err = MissingFromContext(WithOptions(context.Background(), opts), s, "MS", schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, res.Missing)

	opts.Policy = "median"
	_, err = MissingFromContext(WithOptions(context.Background(), opts), s, "MS", schema.Indexer{})
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestMissingFromContextDefaultsToAny(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-01-01", 59), 40)

	res, err := MissingFromContext(context.Background(), s, "MS", schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, schema.AnyPolicy, res.Policy)
	assert.Equal(t, []bool{false, true}, res.Missing)
}

func TestClassifyRoutesWMOThroughRegroup(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-01-01", 730), 400, 401, 402, 403, 404)

	opts := DefaultOptions()
	opts.Policy = schema.WMOPolicy
	ctx := WithOptions(context.Background(), opts)

	res, err := classify(ctx, s, "YS", schema.Indexer{})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, res.Missing)

	_, err = MissingFromContext(ctx, s, "YS", schema.Indexer{})
	require.ErrorIs(t, err, ErrInvalidFrequency)
}
