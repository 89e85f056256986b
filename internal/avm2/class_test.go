package avm2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashruntime/corevm/internal/value"
)

func TestDuplicateInstanceTraitIsConstructionError(t *testing.T) {
	c := NewClass(PublicQName("Widget"), nil, nil, nil)
	require.NoError(t, c.DefineInstanceTrait(SlotTrait(PublicQName("x"), PublicQName("int"), value.Integer(0))))
	err := c.DefineInstanceTrait(SlotTrait(PublicQName("x"), PublicQName("int"), value.Integer(1)))
	assert.Error(t, err)
}

func TestInstanceTraitResolutionWalksSuperChain(t *testing.T) {
	base := NewClass(PublicQName("Base"), nil, nil, nil)
	require.NoError(t, base.DefineInstanceTrait(SlotTrait(PublicQName("shared"), PublicQName("int"), value.Integer(1))))

	superName := base.Name
	derived := NewClass(PublicQName("Derived"), &superName, nil, nil)
	derived.SuperClass = base
	require.NoError(t, derived.DefineInstanceTrait(SlotTrait(PublicQName("own"), PublicQName("int"), value.Integer(2))))

	_, owner, ok := derived.ResolveInstanceTrait(PublicQName("shared"))
	require.True(t, ok)
	assert.Equal(t, base, owner)

	_, owner, ok = derived.ResolveInstanceTrait(PublicQName("own"))
	require.True(t, ok)
	assert.Equal(t, derived, owner)

	_, _, ok = derived.ResolveInstanceTrait(PublicQName("missing"))
	assert.False(t, ok)
}

func TestRegistryLinksSuperClassByName(t *testing.T) {
	r := NewRegistry()
	superName := PublicQName("Base")
	r.CreateClass(NewClass(superName, nil, nil, nil))

	derivedSuper := superName
	derived := NewClass(PublicQName("Derived"), &derivedSuper, nil, nil)
	r.CreateClass(derived)

	assert.NotNil(t, derived.SuperClass)
	assert.Equal(t, superName, derived.SuperClass.Name)
}
