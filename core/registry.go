package core

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/huangsam/gapcheck/schema"
)

// PolicyFactory builds a policy from an option map that already holds the
// registered defaults overlaid with the caller's options.
type PolicyFactory func(opts map[string]any) (Policy, error)

type registryEntry struct {
	description string
	defaults    map[string]any
	factory     PolicyFactory
	builtin     bool
}

// Registry maps policy names to factories. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[schema.PolicyName]*registryEntry
	order   []schema.PolicyName
}

// Registration is the handle returned by Register.
type Registration struct {
	Name     schema.PolicyName
	registry *Registry
	once     sync.Once
}

// Unregister removes the policy from its registry. Calling it twice is a no-op.
func (r *Registration) Unregister() {
	r.once.Do(func() {
		r.registry.remove(r.Name)
	})
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[schema.PolicyName]*registryEntry)}
}

// DefaultRegistry holds the builtin policies and backs MissingFromContext.
var DefaultRegistry = newBuiltinRegistry()

func newBuiltinRegistry() *Registry {
	r := NewRegistry()
	builtins := []struct {
		name        schema.PolicyName
		description string
		factory     PolicyFactory
	}{
		{schema.AnyPolicy, "missing if any day is absent or null", decodePolicy[AnyPolicy]},
		{schema.WMOPolicy, "monthly WMO rule: nm or more null days, or a null run of nc days", decodePolicy[WMOPolicy]},
		{schema.PctPolicy, "missing if the absent or null fraction reaches tolerance", decodePolicy[PctPolicy]},
		{schema.AtLeastNPolicy, "missing if fewer than n valid values", decodePolicy[AtLeastNPolicy]},
	}
	for _, b := range builtins {
		r.add(b.name, &registryEntry{
			description: b.description,
			defaults:    schema.GetDefaultPolicyOptions(b.name),
			factory:     b.factory,
			builtin:     true,
		})
	}
	return r
}

// decodePolicy decodes an option map into a policy struct. Unknown keys are rejected.
func decodePolicy[T Policy](opts map[string]any) (Policy, error) {
	var p T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       rejectFractionalInts,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return p, nil
}

// rejectFractionalInts stops a float such as 11.7 from being truncated into an int option.
func rejectFractionalInts(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	var v float64
	switch f := data.(type) {
	case float64:
		v = f
	case float32:
		v = float64(f)
	default:
		return data, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return nil, fmt.Errorf("%v is not a whole number", v)
	}
	return data, nil
}

// Register adds a policy under name. It fails when the name is empty or taken.
func (r *Registry) Register(name schema.PolicyName, description string, defaults map[string]any, factory PolicyFactory) (*Registration, error) {
	if name == "" || factory == nil {
		return nil, fmt.Errorf("policy registration needs a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return nil, fmt.Errorf("policy %q is already registered", name)
	}
	r.addLocked(name, &registryEntry{
		description: description,
		defaults:    maps.Clone(defaults),
		factory:     factory,
	})
	return &Registration{Name: name, registry: r}, nil
}

func (r *Registry) add(name schema.PolicyName, e *registryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(name, e)
}

func (r *Registry) addLocked(name schema.PolicyName, e *registryEntry) {
	r.entries[name] = e
	r.order = append(r.order, name)
}

func (r *Registry) remove(name schema.PolicyName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
	r.order = slices.DeleteFunc(r.order, func(n schema.PolicyName) bool { return n == name })
}

// Has reports whether name is registered.
func (r *Registry) Has(name schema.PolicyName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered policy names in registration order.
func (r *Registry) Names() []schema.PolicyName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Defaults returns a copy of the default options of name.
func (r *Registry) Defaults(name schema.PolicyName) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return maps.Clone(e.defaults), nil
}

// Build instantiates the policy registered under name with opts laid over its defaults.
func (r *Registry) Build(name schema.PolicyName, opts map[string]any) (Policy, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	merged := maps.Clone(e.defaults)
	if merged == nil {
		merged = make(map[string]any, len(opts))
	}
	maps.Copy(merged, opts)
	return e.factory(merged)
}

// Describe lists every registered policy, marking the active one. The options
// shown are the defaults with overrides laid over them, as Build merges them.
func (r *Registry) Describe(active schema.PolicyName, overrides map[schema.PolicyName]map[string]any) []schema.PolicyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]schema.PolicyInfo, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		opts := maps.Clone(e.defaults)
		if len(overrides[name]) > 0 {
			if opts == nil {
				opts = make(map[string]any, len(overrides[name]))
			}
			maps.Copy(opts, overrides[name])
		}
		infos = append(infos, schema.PolicyInfo{
			Name:        name,
			Description: e.description,
			Builtin:     e.builtin,
			Active:      name == active,
			Options:     opts,
		})
	}
	return infos
}
