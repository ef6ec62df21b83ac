package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRejectsDuplicateTypes(t *testing.T) {
	registry := NewPolicyRegistry()
	require.NoError(t, RegisterPolicy(registry, func(*Message, *order) bool { return true }))

	err := RegisterPolicy(registry, func(*Message, *order) bool { return false })
	assert.ErrorIs(t, err, ErrDuplicatePolicy)
	assert.Equal(t, []MessageType{TypeFor[*order]()}, registry.Types())
}

func TestRegistryMatchesExactTypesOnly(t *testing.T) {
	registry := NewPolicyRegistry()
	require.NoError(t, RegisterPolicy(registry, func(*Message, *order) bool { return true }))

	special := &specialOrder{order: *newOrder(NewDemandId(), 1)}
	assert.True(t, registry.Handles(TypeFor[*order]()))
	assert.False(t, registry.Handles(TypeOf(special)))

	result := registry.Dispatch(message("a", 0, special))
	assert.Equal(t, DispatchResult{Outcome: Unhandled}, result)
}

func TestDispatchReportsPolicyVerdict(t *testing.T) {
	registry := NewPolicyRegistry()
	require.NoError(t, RegisterPolicy(registry, func(_ *Message, o *order) bool { return o.Amount > 0 }))

	accepted := registry.Dispatch(message("a", 0, newOrder(NewDemandId(), 3)))
	assert.Equal(t, DispatchResult{Outcome: Handled, Success: true}, accepted)
	assert.Equal(t, "handled(true)", accepted.String())

	deferred := registry.Dispatch(message("a", 0, newOrder(NewDemandId(), 0)))
	assert.Equal(t, DispatchResult{Outcome: Handled, Success: false}, deferred)
}

func TestReplaceRequiresAnExistingPolicy(t *testing.T) {
	registry := NewPolicyRegistry()
	err := registry.Replace(TypeFor[*order](), PolicyFunc(func(*Message) bool { return true }))
	assert.ErrorIs(t, err, ErrMissingPolicy)

	require.NoError(t, registry.Register(TypeFor[*order](), PolicyFunc(func(*Message) bool { return false })))
	require.NoError(t, registry.Replace(TypeFor[*order](), PolicyFunc(func(*Message) bool { return true })))

	assert.True(t, registry.Dispatch(message("a", 0, newOrder(NewDemandId(), 1))).Success)
}
