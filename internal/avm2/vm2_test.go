package avm2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashruntime/corevm/internal/diag"
	"github.com/flashruntime/corevm/internal/host"
	"github.com/flashruntime/corevm/internal/value"
)

var countName = PublicQName("count")

func incrementMethod() *Method {
	return NewBuiltinMethod("increment", func(act *Activation, this *Object, args []value.Value) (value.Value, error) {
		cur, err := this.GetProperty(act, countName)
		if err != nil {
			return value.Undefined(), err
		}
		next := cur.IntegerValue() + 1
		if err := this.SetProperty(act, countName, value.Integer(next)); err != nil {
			return value.Undefined(), err
		}
		return value.Integer(next), nil
	})
}

func newCounterClass() *Class {
	c := NewClass(PublicQName("Counter"), nil, nil, nil)
	_ = c.DefineInstanceTrait(SlotTrait(PublicQName("count"), PublicQName("int"), value.Integer(0)))
	_ = c.DefineInstanceTrait(MethodTrait(PublicQName("increment"), incrementMethod()))
	return c
}

// TestCallPropertyDispatchesBuiltinThroughBytecode runs a scripted method
// body (get_local 0 -> call_property increment -> trace -> return_void)
// through the real fetch/execute loop, exercising trait-method dispatch via
// OpCallProperty end to end.
func TestCallPropertyDispatchesBuiltinThroughBytecode(t *testing.T) {
	ctx := host.NewTestContext(9)
	sink := diag.NewMemorySink()
	d := NewDriver(ctx, sink, NewRegistry())

	class := newCounterClass()
	obj := NewObject(class, true)

	code := NewAssembler().
		GetLocal(0).
		CallProperty(PublicQName("increment"), 0).
		Trace().
		ReturnVoid().
		Bytecode()
	method := NewScriptedMethod("run", code, 0, 1)

	_, err := d.Call(method, obj, nil)
	require.NoError(t, err)
	assert.Equal(t, "1\n", sink.Output())

	v, err := obj.GetProperty(nil, countName)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v.IntegerValue())
}

// TestSetPropertyThenGetPropertyRoundTripsThroughBytecode exercises
// set_property/get_property directly, independent of method dispatch.
func TestSetPropertyThenGetPropertyRoundTripsThroughBytecode(t *testing.T) {
	ctx := host.NewTestContext(9)
	sink := diag.NewMemorySink()
	d := NewDriver(ctx, sink, NewRegistry())

	class := newCounterClass()
	obj := NewObject(class, true)

	code := NewAssembler().
		GetLocal(0).
		PushInt(41).
		SetProperty(countName).
		GetLocal(0).
		GetProperty(countName).
		Trace().
		ReturnVoid().
		Bytecode()
	method := NewScriptedMethod("run", code, 0, 1)

	_, err := d.Call(method, obj, nil)
	require.NoError(t, err)
	assert.Equal(t, "41\n", sink.Output())
}

// TestThrowUnwindsToTryRangeHandler confirms an uncaught ScriptError raised
// mid-method is caught by a matching TryRange, resuming at its target PC
// with the thrown payload on the stack.
func TestThrowUnwindsToTryRangeHandler(t *testing.T) {
	ctx := host.NewTestContext(9)
	sink := diag.NewMemorySink()
	d := NewDriver(ctx, sink, NewRegistry())

	asm := NewAssembler()
	asm.PushString("boom").Throw() // pc [0, tryEnd)
	tryEnd := asm.Len()
	asm.Trace().ReturnVoid() // never reached
	catchStart := asm.Len()
	asm.Trace().ReturnVoid() // catch handler: trace the thrown payload

	method := &Method{
		Name:          "risky",
		Code:          asm.Bytecode(),
		RegisterCount: 1,
	}
	act := NewActivation(d, method, NewObject(nil, false), nil, []TryRange{
		{Start: 0, End: tryEnd, TargetPC: catchStart},
	})

	d.pushActivation(act)
	_, err := d.runActivation(act)
	d.popActivation()

	require.NoError(t, err)
	assert.Equal(t, "boom\n", sink.Output())
}

func TestUncaughtThrowPropagatesAsScriptError(t *testing.T) {
	ctx := host.NewTestContext(9)
	d := NewDriver(ctx, diag.NewMemorySink(), NewRegistry())

	code := NewAssembler().PushString("fatal").Throw().Bytecode()
	method := NewScriptedMethod("risky", code, 0, 0)

	_, err := d.Call(method, NewObject(nil, false), nil)
	assert.Error(t, err)
	var se *ScriptError
	assert.ErrorAs(t, err, &se)
}
