package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/huangsam/gapcheck/core/cal"
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/internal/seriesio"
	"github.com/huangsam/gapcheck/schema"
)

// CheckResultBuilder loads a series and classifies it step by step.
// The first failing step records its error and the later steps do nothing.
type CheckResultBuilder struct {
	ctx    context.Context
	cfg    *contract.Config
	series Series
	result *Result
	err    error
}

// NewCheckResultBuilder is the starting point for building a check result.
func NewCheckResultBuilder(ctx context.Context, cfg *contract.Config) *CheckResultBuilder {
	return &CheckResultBuilder{ctx: ctx, cfg: cfg}
}

// LoadSeries reads the configured input file in the configured calendar.
func (b *CheckResultBuilder) LoadSeries() *CheckResultBuilder {
	if b.err != nil {
		return b
	}
	c, err := cal.Lookup(b.cfg.Calendar)
	if err != nil {
		b.err = err
		return b
	}
	table, err := seriesio.Load(b.cfg.InputPath, b.cfg.TimeColumn, b.cfg.ValueColumn)
	if err != nil {
		b.err = err
		return b
	}
	b.series, b.err = NewSeries(c, table.Times, table.Values)
	return b
}

// WithSeries uses s instead of loading the input file.
func (b *CheckResultBuilder) WithSeries(s Series) *CheckResultBuilder {
	if b.err != nil {
		return b
	}
	b.series, b.err = s, s.Validate()
	return b
}

// RequireDaily rejects series with gaps when the config asks for it.
func (b *CheckResultBuilder) RequireDaily() *CheckResultBuilder {
	if b.err != nil || !b.cfg.RequireDaily {
		return b
	}
	b.err = AssertDaily(b.series)
	return b
}

// Classify runs the configured policy over the series.
// Parameters are validated by the engine after the frequency is checked.
func (b *CheckResultBuilder) Classify() *CheckResultBuilder {
	if b.err != nil {
		return b
	}
	opts := DefaultOptions()
	opts.Policy = b.cfg.Policy
	for name, m := range b.cfg.PolicyOptions {
		opts.PolicyOptions[name] = m
	}
	b.result, b.err = classify(WithOptions(b.ctx, opts), b.series, b.cfg.Freq, b.cfg.Indexer)
	return b
}

// Build returns the check result or the first error met.
func (b *CheckResultBuilder) Build() (schema.CheckResult, error) {
	if b.err != nil {
		return schema.CheckResult{}, b.err
	}
	if b.result == nil {
		return schema.CheckResult{}, fmt.Errorf("check was not classified")
	}
	result := schema.CheckResult{
		Input:          b.cfg.InputPath,
		Calendar:       b.cfg.Calendar,
		Freq:           b.cfg.Freq,
		Policy:         b.result.Policy,
		Options:        maps.Clone(b.cfg.PolicyOptions[b.result.Policy]),
		TotalPeriods:   len(b.result.Periods),
		MissingPeriods: b.result.MissingCount(),
		Periods:        b.result.Outcomes(),
	}
	if !b.cfg.Indexer.IsEmpty() {
		result.Indexer = b.cfg.Indexer.String()
	}
	return result, nil
}

// classify dispatches on the options in ctx. The wmo policy is evaluated
// monthly and regrouped so it accepts any monthly or coarser frequency.
func classify(ctx context.Context, s Series, freq string, ix schema.Indexer) (*Result, error) {
	opts := OptionsFromContext(ctx)
	if opts.Policy != schema.WMOPolicy {
		return MissingFromContext(ctx, s, freq, ix)
	}
	policy, err := DefaultRegistry.Build(opts.Policy, opts.PolicyOptions[opts.Policy])
	if err != nil {
		return nil, err
	}
	wmo, ok := policy.(WMOPolicy)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a wmo policy", ErrUnknownPolicy, opts.Policy)
	}
	return MissingWMO(s, freq, wmo.NM, wmo.NC, ix)
}
