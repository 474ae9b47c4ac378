package core

import (
	"context"
	"testing"

	"github.com/huangsam/gapcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restoreOptions puts back the process-wide options once the test ends.
func restoreOptions(t *testing.T) {
	t.Helper()
	saved := ActiveOptions()
	t.Cleanup(func() {
		require.NoError(t, SetOptions(saved))
	})
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, schema.AnyPolicy, opts.Policy)
	assert.Len(t, opts.PolicyOptions, len(schema.BuiltinPolicies))
	assert.Equal(t, 11, opts.PolicyOptions[schema.WMOPolicy]["nm"])
	require.NoError(t, opts.Validate())
}

func TestOptionsClone(t *testing.T) {
	opts := DefaultOptions()
	clone := opts.Clone()
	clone.Policy = schema.PctPolicy
	clone.PolicyOptions[schema.PctPolicy]["tolerance"] = 0.9

	assert.Equal(t, schema.AnyPolicy, opts.Policy)
	assert.Equal(t, 0.1, opts.PolicyOptions[schema.PctPolicy]["tolerance"])
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	opts.Policy = "median"
	require.ErrorIs(t, opts.Validate(), ErrUnknownPolicy)

	opts = DefaultOptions()
	opts.PolicyOptions[schema.WMOPolicy]["nc"] = 45
	require.ErrorIs(t, opts.Validate(), ErrInvalidParameter)

	opts = DefaultOptions()
	opts.PolicyOptions[schema.AtLeastNPolicy] = map[string]any{"count": 3}
	require.ErrorIs(t, opts.Validate(), ErrInvalidParameter)
}

func TestSetOptions(t *testing.T) {
	restoreOptions(t)

	opts := DefaultOptions()
	opts.Policy = schema.AtLeastNPolicy
	opts.PolicyOptions[schema.AtLeastNPolicy]["n"] = 3
	require.NoError(t, SetOptions(opts))

	// Later changes to the caller's copy are not seen.
	opts.PolicyOptions[schema.AtLeastNPolicy]["n"] = 99
	active := ActiveOptions()
	assert.Equal(t, schema.AtLeastNPolicy, active.Policy)
	assert.Equal(t, 3, active.PolicyOptions[schema.AtLeastNPolicy]["n"])

	bad := DefaultOptions()
	bad.Policy = "median"
	require.ErrorIs(t, SetOptions(bad), ErrUnknownPolicy)
	assert.Equal(t, schema.AtLeastNPolicy, ActiveOptions().Policy)
}

func TestOptionsFromContext(t *testing.T) {
	restoreOptions(t)

	global := DefaultOptions()
	global.Policy = schema.PctPolicy
	require.NoError(t, SetOptions(global))
	assert.Equal(t, schema.PctPolicy, OptionsFromContext(context.Background()).Policy)

	scoped := DefaultOptions()
	scoped.Policy = schema.WMOPolicy
	ctx := WithOptions(context.Background(), scoped)
	scoped.Policy = schema.AnyPolicy

	assert.Equal(t, schema.WMOPolicy, OptionsFromContext(ctx).Policy)
	assert.Equal(t, schema.PctPolicy, ActiveOptions().Policy)
}
