package avm2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashruntime/corevm/internal/diag"
	"github.com/flashruntime/corevm/internal/host"
	"github.com/flashruntime/corevm/internal/value"
)

// TestEventDispatchCaptureThenTargetThenBubble is the sixth end-to-end
// scenario: listener A (use_capture=true) and B (use_capture=false) on the
// target node, both type "evt"; listener C (use_capture=false) on the
// target's parent. Dispatching a bubbling "evt" from the target must emit
// A, then B, then C -- parent-capture is empty, at-target runs both in
// insertion order, bubble runs only non-capture ancestor listeners.
func TestEventDispatchCaptureThenTargetThenBubble(t *testing.T) {
	ctx := host.NewTestContext(9)
	sink := diag.NewMemorySink()
	d := NewDriver(ctx, sink, NewRegistry())

	target := NewObject(nil, false)
	parent := NewObject(nil, false)

	traceListener := func(name string) *Object {
		return NewCallableObject(NewBuiltinMethod(name, func(act *Activation, this *Object, args []value.Value) (value.Value, error) {
			sink.TraceLine(name)
			return value.Undefined(), nil
		}))
	}
	a := traceListener("A")
	b := traceListener("B")
	c := traceListener("C")

	target.Dispatch().AddEventListener("evt", 0, a, true)
	target.Dispatch().AddEventListener("evt", 0, b, false)
	parent.Dispatch().AddEventListener("evt", 0, c, false)

	evt := &Event{Type: "evt", Bubbles: true}
	d.DispatchEvent([]*Object{parent}, target, evt)

	assert.Equal(t, "A\nB\nC\n", sink.Output())
}

func TestEventDispatchStopImmediatePropagationHaltsRemainingListeners(t *testing.T) {
	ctx := host.NewTestContext(9)
	sink := diag.NewMemorySink()
	d := NewDriver(ctx, sink, NewRegistry())

	target := NewObject(nil, false)
	var evtRef *Event
	halting := NewCallableObject(NewBuiltinMethod("halt", func(act *Activation, this *Object, args []value.Value) (value.Value, error) {
		sink.TraceLine("halt")
		evtRef.StopImmediatePropagation()
		return value.Undefined(), nil
	}))
	never := NewCallableObject(NewBuiltinMethod("never", func(act *Activation, this *Object, args []value.Value) (value.Value, error) {
		sink.TraceLine("never")
		return value.Undefined(), nil
	}))
	target.Dispatch().AddEventListener("evt", 1, halting, false)
	target.Dispatch().AddEventListener("evt", 0, never, false)

	evt := &Event{Type: "evt"}
	evtRef = evt
	d.DispatchEvent(nil, target, evt)

	assert.Equal(t, "halt\n", sink.Output())
}

func TestEventDispatcherBuiltinClassWiring(t *testing.T) {
	ctx := host.NewTestContext(9)
	sink := diag.NewMemorySink()
	registry := NewRegistry()
	d := NewDriver(ctx, sink, registry)

	class, err := CreateEventDispatcherClass(registry)
	require.NoError(t, err)

	obj, err := d.Construct(class, []value.Value{value.Null()})
	require.NoError(t, err)

	listener := NewCallableObject(NewBuiltinMethod("heard", func(act *Activation, this *Object, args []value.Value) (value.Value, error) {
		sink.TraceLine("heard")
		return value.Undefined(), nil
	}))

	_, err = d.Call(NewBuiltinMethod("", eventDispatcherAddListener), obj, []value.Value{
		value.String("click"), value.Object(listener), value.Bool(false), value.Integer(0),
	})
	require.NoError(t, err)

	has, err := d.Call(NewBuiltinMethod("", eventDispatcherHasListener), obj, []value.Value{value.String("click")})
	require.NoError(t, err)
	assert.True(t, has.BoolValue())

	d.DispatchEvent(nil, obj, &Event{Type: "click"})
	assert.Equal(t, "heard\n", sink.Output())
}
