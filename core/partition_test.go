package core

import (
	"math"
	"testing"

	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFreq(t *testing.T, token string) Frequency {
	t.Helper()
	f, err := ParseFrequency(token)
	require.NoError(t, err)
	return f
}

func TestPartitionMonthStart(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-12-30", 66), 1)

	periods := Partition(s, mustFreq(t, "MS"), s)
	require.Len(t, periods, 4)

	assert.Equal(t, cal.NewDate(2001, 12, 1), periods[0].Start)
	assert.Equal(t, cal.NewDate(2001, 12, 31), periods[0].End)
	assert.Equal(t, []bool{false, true}, periods[0].Nulls)
	assert.Equal(t, 31, periods[1].Observed())
	assert.Equal(t, 28, periods[2].Observed())
	assert.Equal(t, 5, periods[3].Observed())
	assert.Equal(t, cal.NewDate(2002, 3, 1), periods[3].Label)

	total := 0
	for _, p := range periods {
		total += p.Observed()
	}
	assert.Equal(t, s.Len(), total)
}

func TestPartitionWholeSeries(t *testing.T) {
	s := complete(t, cal.Standard, "2001-02-10", 20)

	periods := Partition(s, mustFreq(t, ""), s)
	require.Len(t, periods, 1)
	assert.Equal(t, s.First(), periods[0].Start)
	assert.Equal(t, s.Last(), periods[0].End)
	assert.Equal(t, s.First(), periods[0].Label)
	assert.Equal(t, 20, periods[0].Observed())
}

func TestPartitionWholeSeriesUsesSpan(t *testing.T) {
	s := complete(t, cal.Standard, "2001-01-01", 365)
	selected, err := Select(s, schema.Indexer{Months: []int{7}})
	require.NoError(t, err)

	periods := Partition(selected, mustFreq(t, ""), s)
	require.Len(t, periods, 1)
	assert.Equal(t, cal.NewDate(2001, 1, 1), periods[0].Start)
	assert.Equal(t, cal.NewDate(2001, 12, 31), periods[0].End)
	assert.Equal(t, 31, periods[0].Observed())
}

func TestPartitionEndAnchoredLabels(t *testing.T) {
	s := complete(t, cal.Standard, "2001-12-31", 378)

	periods := Partition(s, mustFreq(t, "Q-NOV"), s)
	require.Len(t, periods, 5)
	assert.Equal(t, cal.NewDate(2002, 2, 28), periods[0].Label)
	assert.Equal(t, cal.NewDate(2002, 5, 31), periods[1].Label)
	assert.Equal(t, cal.NewDate(2003, 2, 28), periods[4].Label)
}

func TestPeriodCounts(t *testing.T) {
	p := Period{Nulls: []bool{false, true, true, false}}
	assert.Equal(t, 4, p.Observed())
	assert.Equal(t, 2, p.NullCount())
	assert.InDelta(t, 0.5, MissingFraction(p, 6), 1e-12)
}

func TestSeriesIsNull(t *testing.T) {
	s := Series{Values: []float64{1, math.NaN(), 0, math.Inf(1)}}
	assert.Equal(t, []bool{false, true, false, false}, s.IsNull())
}

func TestNewSeriesValidation(t *testing.T) {
	d := cal.NewDate(2001, 1, 1)

	_, err := NewSeries(nil, []cal.Date{d}, []float64{1})
	require.ErrorIs(t, err, ErrInvalidSeries)

	_, err = NewSeries(cal.Standard, []cal.Date{d}, []float64{1, 2})
	require.ErrorIs(t, err, ErrInvalidSeries)

	_, err = NewSeries(cal.Standard, []cal.Date{d, d}, []float64{1, 2})
	require.ErrorIs(t, err, ErrInvalidSeries)

	_, err = NewSeries(cal.Standard, []cal.Date{cal.NewDate(2001, 2, 30)}, []float64{1})
	require.ErrorIs(t, err, ErrInvalidSeries)

	s, err := NewSeries(cal.Day360, []cal.Date{cal.NewDate(2001, 2, 30)}, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestExpectedCountsAnalytic(t *testing.T) {
	tests := []struct {
		name     string
		calendar cal.Calendar
		expected []int
	}{
		{"standard", cal.Standard, []int{31, 29, 31, 30}},
		{"noleap", cal.NoLeap, []int{31, 28, 31, 30}},
		{"all_leap", cal.AllLeap, []int{31, 29, 31, 30}},
		{"360_day", cal.Day360, []int{30, 30, 30, 30}},
		{"julian", cal.Julian, []int{31, 29, 31, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := complete(t, tt.calendar, "2000-01-01", 100)
			periods := Partition(s, mustFreq(t, "MS"), s)
			assert.Equal(t, tt.expected, ExpectedCounts(tt.calendar, periods, schema.Indexer{}))
		})
	}
}

func TestExpectedCountsWithIndexer(t *testing.T) {
	s := complete(t, cal.Standard, "2000-01-01", 731)

	tests := []struct {
		name     string
		ix       schema.Indexer
		expected []int
	}{
		{"winter", schema.Indexer{Seasons: []schema.Season{schema.WinterSeason}}, []int{91, 90}},
		{"two months", schema.Indexer{Months: []int{2, 3}}, []int{60, 59}},
		{"doy", schema.Indexer{DOYBounds: &schema.DOYBounds{Start: 1, End: 10}}, []int{10, 10}},
		{"dates", schema.Indexer{DateBounds: &schema.DateBounds{Start: "02-20", End: "03-05"}}, []int{15, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, err := Select(s, tt.ix)
			require.NoError(t, err)
			periods := Partition(selected, mustFreq(t, "YS"), s)
			assert.Equal(t, tt.expected, ExpectedCounts(cal.Standard, periods, tt.ix))
		})
	}
}

func TestExpectedCountsEmpty(t *testing.T) {
	assert.Empty(t, ExpectedCounts(cal.Standard, nil, schema.Indexer{}))
}
