package core

import (
	"context"
	"fmt"
	"maps"
	"sync/atomic"

	"github.com/huangsam/gapcheck/schema"
)

// Options selects the active missingness policy and the options of every policy.
type Options struct {
	Policy        schema.PolicyName
	PolicyOptions map[schema.PolicyName]map[string]any
}

// DefaultOptions activates the any policy with builtin defaults.
func DefaultOptions() Options {
	opts := Options{
		Policy:        schema.AnyPolicy,
		PolicyOptions: make(map[schema.PolicyName]map[string]any, len(schema.BuiltinPolicies)),
	}
	for _, name := range schema.BuiltinPolicies {
		opts.PolicyOptions[name] = schema.GetDefaultPolicyOptions(name)
	}
	return opts
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	clone := Options{Policy: o.Policy, PolicyOptions: make(map[schema.PolicyName]map[string]any, len(o.PolicyOptions))}
	for name, m := range o.PolicyOptions {
		clone.PolicyOptions[name] = maps.Clone(m)
	}
	return clone
}

// Validate checks that the active policy exists in DefaultRegistry and that
// every option map builds a valid policy.
func (o Options) Validate() error {
	if !DefaultRegistry.Has(o.Policy) {
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, o.Policy)
	}
	for name, m := range o.PolicyOptions {
		p, err := DefaultRegistry.Build(name, m)
		if err != nil {
			return fmt.Errorf("policy %s: %w", name, err)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("policy %s: %w", name, err)
		}
	}
	return nil
}

var activeOptions atomic.Pointer[Options]

func init() {
	opts := DefaultOptions()
	activeOptions.Store(&opts)
}

// SetOptions replaces the process-wide options after validating them.
func SetOptions(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	clone := opts.Clone()
	activeOptions.Store(&clone)
	return nil
}

// ActiveOptions returns a copy of the process-wide options.
func ActiveOptions() Options {
	return activeOptions.Load().Clone()
}

// WithOptions scopes opts to ctx, overriding the process-wide options.
func WithOptions(ctx context.Context, opts Options) context.Context {
	clone := opts.Clone()
	return context.WithValue(ctx, optionsKey, &clone)
}

// OptionsFromContext returns the options scoped to ctx or the process-wide ones.
func OptionsFromContext(ctx context.Context) Options {
	if opts, ok := ctx.Value(optionsKey).(*Options); ok && opts != nil {
		return *opts
	}
	return ActiveOptions()
}
