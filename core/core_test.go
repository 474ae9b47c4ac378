package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/internal/iocache"
	"github.com/huangsam/gapcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// writeSeriesCSV writes s as a time,value CSV in a temp dir and returns its path.
func writeSeriesCSV(t *testing.T, s Series) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("time,value\n")
	for i, d := range s.Times {
		v := "NaN"
		if !s.IsNull()[i] {
			v = fmt.Sprintf("%g", s.Values[i])
		}
		fmt.Fprintf(&b, "%s,%s\n", d, v)
	}
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func checkConfig(path string) *contract.Config {
	return &contract.Config{
		InputPath:     path,
		TimeColumn:    contract.DefaultTimeColumn,
		ValueColumn:   contract.DefaultValueColumn,
		Calendar:      schema.StandardCalendar,
		Freq:          "MS",
		Policy:        schema.AnyPolicy,
		PolicyOptions: DefaultOptions().PolicyOptions,
		Precision:     contract.DefaultPrecision,
		Output:        schema.JSONOut,
		StoreBackend:  schema.NoneBackend,
	}
}

func TestGetCheckResult(t *testing.T) {
	path := writeSeriesCSV(t, withNulls(complete(t, cal.Standard, "2001-12-30", 66), 40))
	cfg := checkConfig(path)

	result, err := GetCheckResult(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, path, result.Input)
	assert.Equal(t, schema.AnyPolicy, result.Policy)
	assert.Equal(t, 4, result.TotalPeriods)
	assert.Equal(t, 3, result.MissingPeriods)
	assert.Equal(t, []bool{true, false, true, true}, result.Flags())
	assert.Empty(t, result.Indexer)
}

func TestGetCheckResultPolicies(t *testing.T) {
	s := withNulls(complete(t, cal.Standard, "2001-01-01", 730), 400, 401, 402, 403, 404)
	path := writeSeriesCSV(t, s)

	tests := []struct {
		name    string
		policy  schema.PolicyName
		freq    string
		opts    map[string]any
		flags   []bool
		wantErr error
	}{
		{"wmo yearly", schema.WMOPolicy, "YS", nil, []bool{false, true}, nil},
		{"wmo loose", schema.WMOPolicy, "YS", map[string]any{"nm": 11, "nc": 6}, []bool{false, false}, nil},
		{"wmo daily", schema.WMOPolicy, "D", nil, nil, ErrInvalidFrequency},
		{"wmo bad nm", schema.WMOPolicy, "YS", map[string]any{"nm": 31, "nc": 5}, nil, ErrInvalidParameter},
		{"pct", schema.PctPolicy, "YS", map[string]any{"tolerance": 0.01}, []bool{false, true}, nil},
		{"pct lenient", schema.PctPolicy, "YS", map[string]any{"tolerance": 0.5}, []bool{false, false}, nil},
		{"at least n", schema.AtLeastNPolicy, "YS", map[string]any{"n": 361}, []bool{false, true}, nil},
		{"unknown policy", "median", "YS", nil, nil, ErrUnknownPolicy},
		{"bad frequency before bad option", schema.PctPolicy, "W", map[string]any{"tolerance": 3}, nil, ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := checkConfig(path)
			cfg.Policy = tt.policy
			cfg.Freq = tt.freq
			if tt.opts != nil {
				cfg.PolicyOptions[tt.policy] = tt.opts
			}
			result, err := GetCheckResult(context.Background(), cfg, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.flags, result.Flags())
			assert.Equal(t, tt.policy, result.Policy)
		})
	}
}

func TestGetCheckResultWithIndexer(t *testing.T) {
	path := writeSeriesCSV(t, without(complete(t, cal.Standard, "2001-01-01", 730), 10))
	cfg := checkConfig(path)
	cfg.Freq = "YS"
	cfg.Indexer = schema.Indexer{Seasons: []schema.Season{schema.SummerSeason}}

	result, err := GetCheckResult(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, result.Flags())
	assert.Equal(t, "season=JJA", result.Indexer)
	assert.Equal(t, 92, result.Periods[0].Expected)

	cfg.Indexer = schema.Indexer{DateBounds: &schema.DateBounds{Start: "01-05", End: "01-20"}}
	result, err = GetCheckResult(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, result.Flags())
}

func TestGetCheckResultRequireDaily(t *testing.T) {
	path := writeSeriesCSV(t, without(complete(t, cal.Standard, "2001-01-01", 730), 365))
	cfg := checkConfig(path)
	cfg.Freq = "YS"

	result, err := GetCheckResult(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, result.Flags())

	cfg.RequireDaily = true
	_, err = GetCheckResult(context.Background(), cfg, nil)
	require.ErrorIs(t, err, ErrNotDaily)
}

func TestGetCheckResultLoadErrors(t *testing.T) {
	cfg := checkConfig(filepath.Join(t.TempDir(), "absent.csv"))
	_, err := GetCheckResult(context.Background(), cfg, nil)
	require.Error(t, err)

	path := writeSeriesCSV(t, complete(t, cal.Standard, "2001-01-01", 10))
	cfg = checkConfig(path)
	cfg.Calendar = "lunar"
	_, err = GetCheckResult(context.Background(), cfg, nil)
	require.ErrorIs(t, err, cal.ErrUnknownCalendar)

	dup := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(dup, []byte("time,value\n2001-01-01,1\n2001-01-01,2\n"), 0o644))
	_, err = GetCheckResult(context.Background(), checkConfig(dup), nil)
	require.ErrorIs(t, err, ErrInvalidSeries)
}

func TestRunCheckCoreTracksRun(t *testing.T) {
	path := writeSeriesCSV(t, complete(t, cal.Standard, "2001-12-30", 66))
	cfg := checkConfig(path)

	store := &iocache.MockRunStore{}
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	store.On("BeginRun", mock.Anything, path, schema.AnyPolicy, "MS", cfg.ConfigParams()).Return(int64(7), nil)
	store.On("RecordPeriods", int64(7), mock.MatchedBy(func(p []schema.PeriodOutcome) bool { return len(p) == 4 })).Return(nil)
	store.On("EndRun", int64(7), mock.Anything, 4, 2).Return(nil)

	result, err := runCheckCore(WithSuppressHeader(context.Background()), cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, 2, result.MissingPeriods)
	mgr.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestRunCheckCoreTrackingFailuresOnlyWarn(t *testing.T) {
	path := writeSeriesCSV(t, complete(t, cal.Standard, "2001-01-01", 31))
	cfg := checkConfig(path)

	t.Run("begin fails", func(t *testing.T) {
		store := &iocache.MockRunStore{}
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetRunStore").Return(store)
		store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(int64(0), errors.New("database is locked"))

		result, err := runCheckCore(WithSuppressHeader(context.Background()), cfg, mgr)
		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalPeriods)
		store.AssertNotCalled(t, "RecordPeriods", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("record fails", func(t *testing.T) {
		store := &iocache.MockRunStore{}
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetRunStore").Return(store)
		store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(3), nil)
		store.On("RecordPeriods", int64(3), mock.Anything).Return(errors.New("disk full"))
		store.On("EndRun", int64(3), mock.Anything, 1, 0).Return(nil)

		_, err := runCheckCore(WithSuppressHeader(context.Background()), cfg, mgr)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("no store", func(t *testing.T) {
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetRunStore").Return(nil)

		_, err := runCheckCore(WithSuppressHeader(context.Background()), cfg, mgr)
		require.NoError(t, err)
		mgr.AssertExpectations(t)
	})
}

func TestRunCheckCoreClosesRunOnFailure(t *testing.T) {
	good := writeSeriesCSV(t, complete(t, cal.Standard, "2001-01-01", 31))
	gappy := writeSeriesCSV(t, without(complete(t, cal.Standard, "2001-01-01", 31), 10))

	tests := []struct {
		name    string
		cfg     func() *contract.Config
		wantErr error
	}{
		{"classify fails", func() *contract.Config {
			cfg := checkConfig(good)
			cfg.Policy = schema.WMOPolicy
			cfg.Freq = "D"
			return cfg
		}, ErrInvalidFrequency},
		{"require daily fails", func() *contract.Config {
			cfg := checkConfig(gappy)
			cfg.RequireDaily = true
			return cfg
		}, ErrNotDaily},
		{"load fails", func() *contract.Config {
			return checkConfig(filepath.Join(t.TempDir(), "nope.csv"))
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockRunStore{}
			mgr := &iocache.MockStoreManager{}
			mgr.On("GetRunStore").Return(store)
			store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(9), nil)
			store.On("EndRun", int64(9), mock.Anything, 0, 0).Return(nil)

			_, err := runCheckCore(WithSuppressHeader(context.Background()), tt.cfg(), mgr)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			store.AssertExpectations(t)
			store.AssertNotCalled(t, "RecordPeriods", mock.Anything, mock.Anything)
		})
	}
}

func TestRunCheckCoreFailureWithoutRunID(t *testing.T) {
	path := writeSeriesCSV(t, complete(t, cal.Standard, "2001-01-01", 31))
	cfg := checkConfig(path)
	cfg.Policy = schema.WMOPolicy
	cfg.Freq = "D"

	store := &iocache.MockRunStore{}
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	_, err := runCheckCore(WithSuppressHeader(context.Background()), cfg, mgr)
	require.ErrorIs(t, err, ErrInvalidFrequency)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteCheckWritesJSON(t *testing.T) {
	path := writeSeriesCSV(t, complete(t, cal.Standard, "2001-12-31", 378))
	cfg := checkConfig(path)
	cfg.Freq = "Q-NOV"
	cfg.OutputFile = filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, ExecuteCheck(context.Background(), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var result schema.CheckResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, []bool{true, false, false, false, true}, result.Flags())
	assert.Equal(t, "2002-02-28", result.Periods[0].Label)
}

func TestExecuteDaily(t *testing.T) {
	good := writeSeriesCSV(t, complete(t, cal.Standard, "2001-01-01", 365))
	cfg := checkConfig(good)
	cfg.OutputFile = filepath.Join(t.TempDir(), "daily.json")
	require.NoError(t, ExecuteDaily(context.Background(), cfg, nil))

	gappy := writeSeriesCSV(t, without(complete(t, cal.Standard, "2001-01-01", 730), 365))
	cfg = checkConfig(gappy)
	cfg.OutputFile = filepath.Join(t.TempDir(), "daily.json")
	err := ExecuteDaily(context.Background(), cfg, nil)
	require.ErrorIs(t, err, ErrNotDaily)

	data, readErr := os.ReadFile(cfg.OutputFile)
	require.NoError(t, readErr)
	var report schema.ContinuityReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.False(t, report.Daily)
	assert.Contains(t, report.Problem, "1 day gap after 2001-12-31")
}

func TestGetContinuityReportKeepsDuplicates(t *testing.T) {
	dup := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(dup, []byte("time,value\n2001-01-01,1\n2001-01-02,2\n2001-01-02,3\n"), 0o644))

	report, err := GetContinuityReport(checkConfig(dup))
	require.NoError(t, err)
	assert.False(t, report.Daily)
	assert.Equal(t, 3, report.Length)
	assert.Contains(t, report.Problem, "duplicate timestamp 2001-01-02")
	assert.Equal(t, schema.StandardCalendar, report.Calendar)
}

func TestExecutePolicies(t *testing.T) {
	cfg := checkConfig("")
	cfg.Output = schema.CSVOut
	cfg.Policy = schema.WMOPolicy
	cfg.OutputFile = filepath.Join(t.TempDir(), "policies.csv")

	require.NoError(t, ExecutePolicies(context.Background(), cfg, nil))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wmo,true,true,nc=5 nm=11")

	infos := GetPolicies(schema.AnyPolicy, nil)
	assert.True(t, infos[0].Active)
}

func TestExecutePoliciesShowsConfiguredOptions(t *testing.T) {
	cfg := checkConfig("")
	cfg.Output = schema.CSVOut
	cfg.Policy = schema.PctPolicy
	cfg.PolicyOptions[schema.PctPolicy]["tolerance"] = 0.05
	cfg.OutputFile = filepath.Join(t.TempDir(), "policies.csv")

	require.NoError(t, ExecutePolicies(context.Background(), cfg, nil))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pct,true,true,tolerance=0.05")

	infos := GetPolicies(cfg.Policy, cfg.PolicyOptions)
	require.Len(t, infos, len(schema.BuiltinPolicies))
	assert.Equal(t, schema.PctPolicy, infos[2].Name)
	assert.Equal(t, map[string]any{"tolerance": 0.05}, infos[2].Options)
	assert.Equal(t, map[string]any{"nm": 11, "nc": 5}, infos[1].Options)

	// The registry defaults are left untouched.
	defaults, err := DefaultRegistry.Defaults(schema.PctPolicy)
	require.NoError(t, err)
	assert.NotEqual(t, 0.05, defaults["tolerance"])
}

func TestCheckResultBuilderWithSeries(t *testing.T) {
	cfg := checkConfig("memory")
	cfg.Freq = "YS"

	result, err := NewCheckResultBuilder(context.Background(), cfg).
		WithSeries(complete(t, cal.Standard, "2001-12-31", 378)).
		RequireDaily().
		Classify().
		Build()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, result.Flags())

	_, err = NewCheckResultBuilder(context.Background(), cfg).
		WithSeries(Series{}).
		Classify().
		Build()
	require.ErrorIs(t, err, ErrInvalidSeries)

	_, err = NewCheckResultBuilder(context.Background(), cfg).Build()
	require.Error(t, err)
}
