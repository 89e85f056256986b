package avm2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashruntime/corevm/internal/value"
)

func TestSlotTraitRoundTrip(t *testing.T) {
	class := NewClass(PublicQName("Point"), nil, nil, nil)
	require.NoError(t, class.DefineInstanceTrait(SlotTrait(PublicQName("x"), PublicQName("int"), value.Integer(0))))

	o := NewObject(class, true)
	v, err := o.GetProperty(nil, PublicQName("x"))
	require.NoError(t, err)
	assert.Equal(t, int32(0), v.IntegerValue(), "unset slot reads back its declared default")

	require.NoError(t, o.SetProperty(nil, PublicQName("x"), value.Integer(5)))
	v, err = o.GetProperty(nil, PublicQName("x"))
	require.NoError(t, err)
	assert.Equal(t, int32(5), v.IntegerValue())
}

func TestConstTraitRejectsSetProperty(t *testing.T) {
	class := NewClass(PublicQName("Point"), nil, nil, nil)
	require.NoError(t, class.DefineInstanceTrait(ConstTrait(PublicQName("ORIGIN"), PublicQName("int"), value.Integer(0))))
	o := NewObject(class, true)

	err := o.SetProperty(nil, PublicQName("ORIGIN"), value.Integer(1))
	assert.ErrorIs(t, err, ErrConstViolation)
}

func TestInitPropertyBypassesConst(t *testing.T) {
	class := NewClass(PublicQName("Point"), nil, nil, nil)
	require.NoError(t, class.DefineInstanceTrait(ConstTrait(PublicQName("ORIGIN"), PublicQName("int"), value.Integer(0))))
	o := NewObject(class, true)

	require.NoError(t, o.InitProperty(PublicQName("ORIGIN"), value.Integer(7)))
	v, err := o.GetProperty(nil, PublicQName("ORIGIN"))
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.IntegerValue())
}

func TestSealedClassRejectsDynamicProperty(t *testing.T) {
	class := NewClass(PublicQName("Point"), nil, nil, nil)
	o := NewObject(class, true)
	err := o.SetProperty(nil, PublicQName("extra"), value.Integer(1))
	assert.ErrorIs(t, err, ErrSealedClass)
}

func TestNonSealedClassAllowsDynamicProperty(t *testing.T) {
	class := NewClass(PublicQName("Point"), nil, nil, nil)
	o := NewObject(class, false)
	require.NoError(t, o.SetProperty(nil, PublicQName("extra"), value.String("hi")))
	v, err := o.GetProperty(nil, PublicQName("extra"))
	require.NoError(t, err)
	assert.Equal(t, "hi", v.StringValue())
}
