package avm1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flashruntime/corevm/internal/value"
)

func TestObjectCaseFolding(t *testing.T) {
	cases := []struct {
		name    string
		version uint8
		lookup  string
		want    bool
	}{
		{"v6 folds case", 6, "FOO", true},
		{"v7 is exact", 7, "FOO", false},
		{"v7 exact match", 7, "foo", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := NewObject()
			o.DefineOwn(c.version, "foo", value.Integer(1), PropertyFlags{})
			assert.Equal(t, c.want, o.HasOwnProperty(c.version, c.lookup))
		})
	}
}

func TestObjectPreservesInsertionCaseOnRedefine(t *testing.T) {
	o := NewObject()
	o.DefineOwn(6, "Foo", value.Integer(1), PropertyFlags{})
	o.DefineOwn(6, "FOO", value.Integer(2), PropertyFlags{})

	keys := o.Enumerate()
	assert.Equal(t, []string{"Foo"}, keys)
	assert.Equal(t, int32(2), o.Get(6, "foo", o, nil).IntegerValue())
}

func TestObjectDontDeleteBlocksRemoval(t *testing.T) {
	o := NewObject()
	o.DefineOwn(6, "x", value.Integer(1), PropertyFlags{DontDelete: true})
	assert.False(t, o.DeleteOwn(6, "x"))
	assert.True(t, o.HasOwnProperty(6, "x"))
}

func TestObjectAccessorRoundTrip(t *testing.T) {
	o := NewObject()
	var stored value.Value
	getter := NewObject()
	getter.SetFunction(&FunctionData{
		Native: func(this *Object, args []value.Value) value.Value { return stored },
	})
	setter := NewObject()
	setter.SetFunction(&FunctionData{
		Native: func(this *Object, args []value.Value) value.Value {
			stored = args[0]
			return value.Undefined()
		},
	})
	getterVal := value.Object(getter)
	setterVal := value.Object(setter)
	o.DefineAccessor(6, "prop", &getterVal, &setterVal, PropertyFlags{})

	invoke := func(fn value.Value, this *Object, args []value.Value) value.Value {
		obj := fn.ObjectValue().(*Object)
		return obj.AsFunction().Native(this, args)
	}

	o.Set(6, "prop", value.Integer(42), invoke)
	assert.Equal(t, int32(42), o.Get(6, "prop", o, invoke).IntegerValue())
}

func TestScopeResolveInnermostWins(t *testing.T) {
	globals := NewObject()
	globals.DefineOwn(6, "x", value.Integer(1), PropertyFlags{})
	global := FromGlobal(globals)
	local := NewLocalChild(global)
	local.Define(6, "x", value.Integer(2))

	assert.Equal(t, int32(2), local.Resolve(6, "x").IntegerValue())
	assert.Equal(t, int32(1), global.Resolve(6, "x").IntegerValue())
}

func TestScopeWithInjectsWithoutOwning(t *testing.T) {
	globals := NewObject()
	global := FromGlobal(globals)
	withObj := NewObject()
	withObj.DefineOwn(6, "y", value.Integer(5), PropertyFlags{})
	withScope := NewWithChild(global, withObj)

	withScope.Define(6, "z", value.Integer(9))
	assert.False(t, withObj.HasOwnProperty(6, "z"))
	assert.True(t, globals.HasOwnProperty(6, "z"))
	assert.Equal(t, int32(5), withScope.Resolve(6, "y").IntegerValue())
}

func TestRegisterSetOutOfRange(t *testing.T) {
	rs := NewRegisterSet(2)
	assert.True(t, rs.Get(7).IsUndefined())
	rs.Set(7, value.Integer(1)) // silent no-op
	assert.True(t, rs.Get(7).IsUndefined())

	rs.Set(1, value.Integer(10))
	assert.Equal(t, int32(10), rs.Get(1).IntegerValue())
}

func TestBytecodeSameBacking(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	full := NewBytecode(buf)
	sub := full.Sub(1, 3)
	other := NewBytecode(buf)

	assert.True(t, full.SameBacking(sub))
	assert.False(t, full.SameBacking(other))
	assert.Equal(t, []byte{2, 3}, sub.Bytes())
}
