// Package avm2 implements VM2: the register-based, class-based interpreter
// built around multi-namespace qualified names, trait tables, and a
// hierarchical event-dispatch subsystem.
package avm2

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/flashruntime/corevm/internal/diag"
	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/host"
	"github.com/flashruntime/corevm/internal/value"
)

// Driver is VM2's activation stack, opcode fetch/execute loop, and call
// mechanism -- the register-based sibling of avm1.Driver, grounded on the
// same fetch/decode/dispatch shape.
type Driver struct {
	mu       sync.Mutex
	stack    []*Activation
	ctx      *host.Context
	trace    diag.Sink
	registry *Registry
	opBudget int64
}

func NewDriver(ctx *host.Context, trace diag.Sink, registry *Registry) *Driver {
	return &Driver{ctx: ctx, trace: trace, registry: registry}
}

func (d *Driver) Registry() *Registry { return d.registry }

func (d *Driver) SetExecutionBudget(n int64) { d.opBudget = n }

func (d *Driver) pushActivation(act *Activation) {
	d.mu.Lock()
	d.stack = append(d.stack, act)
	d.mu.Unlock()
	d.ctx.GC.AddRoot(act)
}

func (d *Driver) popActivation() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stack) == 0 {
		return
	}
	idx := len(d.stack) - 1
	act := d.stack[idx]
	d.stack = d.stack[:idx]
	d.ctx.GC.RemoveRoot(act)
}

func (d *Driver) Depth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.stack)
}

func (d *Driver) logDiagnostic(msg string) {
	if d.trace != nil {
		d.trace.TraceLine(msg)
	}
}

// Call invokes m with the given receiver and arguments, dispatching to the
// builtin function if m.IsBuiltin(), otherwise running its bytecode through
// runActivation. Unlike VM1, a ScriptError genuinely propagates to the
// caller instead of being swallowed (§7).
func (d *Driver) Call(m *Method, this *Object, args []value.Value) (value.Value, error) {
	if m == nil {
		return value.Undefined(), NewScriptError(ErrInternalInvariant, "call to nil method")
	}
	if m.IsBuiltin() {
		return d.callBuiltin(nil, m, this, args)
	}

	act := NewActivation(d, m, this, args, nil)
	d.pushActivation(act)
	defer d.popActivation()
	return d.runActivation(act)
}

// CallMethod is Call parameterized by the caller's activation, used by
// Object.GetProperty/SetProperty when a trait resolves to a getter/setter
// or bound method, and by the event dispatcher's ListenerInvoke adapter.
func (d *Driver) CallMethod(caller *Activation, m *Method, this *Object, args []value.Value) (value.Value, error) {
	if m == nil {
		return value.Undefined(), NewScriptError(ErrInternalInvariant, "call to nil method")
	}
	if m.IsBuiltin() {
		return d.callBuiltin(caller, m, this, args)
	}
	return d.Call(m, this, args)
}

func (d *Driver) callBuiltin(caller *Activation, m *Method, this *Object, args []value.Value) (value.Value, error) {
	act := caller
	if act == nil {
		act = &Activation{driver: d}
	}
	return m.Builtin(act, this, args)
}

// Construct builds a new instance of class, running the full inheritance
// chain's instance_init methods from base to derived the way a class
// hierarchy's constructors chain in the reference runtime -- here
// simplified to invoking just the leaf class's instance_init, since
// explicit `super()` delegation is a scripted-method concern the bytecode
// itself encodes, not something the driver re-derives.
func (d *Driver) Construct(class *Class, args []value.Value) (*Object, error) {
	sealed := true
	obj := NewObject(class, sealed)
	if class != nil && class.InstanceInit != nil {
		if _, err := d.Call(class.InstanceInit, obj, args); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// runActivation executes act from PC 0 until its code is exhausted (an
// implicit `undefined` return) or an explicit return/throw fires. A
// returned error is always a *ScriptError: VM2 has no host-diagnostic-only
// error class the way VM1's Fault is.
func (d *Driver) runActivation(act *Activation) (value.Value, error) {
	stack := make([]value.Value, 0, 16)
	push := func(v value.Value) { stack = append(stack, v) }
	pop := func() (value.Value, error) {
		if len(stack) == 0 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for {
		if d.opBudget > 0 {
			d.opBudget--
			if d.opBudget == 0 {
				return value.Undefined(), NewScriptError(ErrInternalInvariant, "opcode budget exhausted")
			}
		}

		code := act.Code()
		if act.PC() >= code.Len() {
			return value.Undefined(), nil
		}

		op, operand, next, derr := decodeInstruction2(code, act.PC())
		if derr != nil {
			if handled, v, resumed := d.handleThrow(act, act.PC(), &stack, derr); handled {
				push(v)
				_ = resumed
				continue
			}
			return value.Undefined(), derr
		}
		instrPC := act.PC()
		act.SetPC(next)

		result, err := d.step(act, op, operand, &stack, push, pop)
		if err != nil {
			if se, ok := err.(*returnValue); ok {
				return se.v, nil
			}
			if handled, v, _ := d.handleThrow(act, instrPC, &stack, err); handled {
				push(v)
				continue
			}
			return value.Undefined(), err
		}
		_ = result
	}
}

// returnValue is the VM2 analogue of avm1's returnSignal: an explicit
// ReturnValue/ReturnVoid unwinds runActivation's loop without looking like
// a script error.
type returnValue struct{ v value.Value }

func (r *returnValue) Error() string { return "return" }

// handleThrow checks whether err (always a *ScriptError by construction)
// is caught by a try-range covering pc, the offset of the instruction that
// raised it. If so it moves PC to the handler target, clears the operand
// stack (handler bodies start clean), and returns the thrown payload to
// push back as the catch value.
func (d *Driver) handleThrow(act *Activation, pc int, stack *[]value.Value, err error) (bool, value.Value, bool) {
	se, ok := err.(*ScriptError)
	if !ok {
		return false, value.Undefined(), false
	}
	if handler, ok := act.HandlerFor(pc); ok {
		act.SetPC(handler.TargetPC)
		*stack = (*stack)[:0]
		return true, se.Payload, true
	}
	return false, value.Undefined(), false
}

func (d *Driver) step(act *Activation, op Opcode, operand []byte, stackPtr *[]value.Value, push func(value.Value), pop func() (value.Value, error)) (value.Value, error) {
	switch op {
	case OpNop:
		return value.Undefined(), nil

	case OpPop:
		_, err := pop()
		return value.Undefined(), err

	case OpDup:
		if len(*stackPtr) == 0 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "dup on empty stack")
		}
		push((*stackPtr)[len(*stackPtr)-1])
		return value.Undefined(), nil

	case OpPushUndefined:
		push(value.Undefined())
	case OpPushNull:
		push(value.Null())
	case OpPushTrue:
		push(value.Bool(true))
	case OpPushFalse:
		push(value.Bool(false))

	case OpReturnValue:
		v, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		return value.Undefined(), &returnValue{v: v}

	case OpReturnVoid:
		return value.Undefined(), &returnValue{v: value.Undefined()}

	case OpThrow:
		v, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		return value.Undefined(), NewThrownError(v)

	case OpAdd:
		b, _ := pop()
		a, _ := pop()
		push(value.Number(numberOf(a) + numberOf(b)))

	case OpSubtract:
		b, _ := pop()
		a, _ := pop()
		push(value.Number(numberOf(a) - numberOf(b)))

	case OpMultiply:
		b, _ := pop()
		a, _ := pop()
		push(value.Number(numberOf(a) * numberOf(b)))

	case OpEquals, OpStrictEquals:
		b, _ := pop()
		a, _ := pop()
		push(value.Bool(valuesEqual(a, b)))

	case OpNot:
		a, _ := pop()
		push(value.Bool(!truthy(a)))

	case OpTrace:
		v, _ := pop()
		d.logDiagnostic(stringOf(v))

	case OpPushByte:
		if len(operand) < 1 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "push_byte: missing operand")
		}
		push(value.Integer(int32(int8(operand[0]))))

	case OpPushInt:
		if len(operand) < 4 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "push_int: truncated")
		}
		push(value.Integer(int32(binary.LittleEndian.Uint32(operand))))

	case OpPushDouble:
		if len(operand) < 8 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "push_double: truncated")
		}
		push(value.Number(math.Float64frombits(binary.LittleEndian.Uint64(operand))))

	case OpPushString:
		if len(operand) < 2 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "push_string: truncated")
		}
		n := int(binary.LittleEndian.Uint16(operand[:2]))
		if len(operand) < 2+n {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "push_string: truncated body")
		}
		push(value.String(string(operand[2 : 2+n])))

	case OpGetLocal:
		if len(operand) < 1 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "get_local: missing operand")
		}
		push(act.Register(int(operand[0])))

	case OpSetLocal:
		if len(operand) < 1 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "set_local: missing operand")
		}
		v, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		act.SetRegister(int(operand[0]), v)

	case OpGetProperty:
		name, _, err := decodeQName(operand)
		if err != nil {
			return value.Undefined(), err
		}
		objVal, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		obj, ok := objVal.ObjectValue().(*Object)
		if !ok {
			push(value.Undefined())
			return value.Undefined(), nil
		}
		v, err := obj.GetProperty(act, name)
		if err != nil {
			return value.Undefined(), err
		}
		push(v)

	case OpSetProperty:
		name, _, err := decodeQName(operand)
		if err != nil {
			return value.Undefined(), err
		}
		v, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		objVal, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		if obj, ok := objVal.ObjectValue().(*Object); ok {
			if err := obj.SetProperty(act, name, v); err != nil {
				return value.Undefined(), err
			}
		}

	case OpInitProperty:
		name, _, err := decodeQName(operand)
		if err != nil {
			return value.Undefined(), err
		}
		v, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		objVal, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		if obj, ok := objVal.ObjectValue().(*Object); ok {
			if err := obj.InitProperty(name, v); err != nil {
				return value.Undefined(), err
			}
		}

	case OpCallProperty:
		name, off, err := decodeQName(operand)
		if err != nil {
			return value.Undefined(), err
		}
		if len(operand) < off+1 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "call_property: missing argc")
		}
		argc := int(operand[off])
		args := make([]value.Value, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i], err = pop()
			if err != nil {
				return value.Undefined(), err
			}
		}
		objVal, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		obj, ok := objVal.ObjectValue().(*Object)
		if !ok {
			return value.Undefined(), NewScriptError(ErrTypeCoercion, "call_property %s on non-object", name)
		}
		prop, err := obj.GetProperty(act, name)
		if err != nil {
			return value.Undefined(), err
		}
		bound, ok := prop.ObjectValue().(*BoundMethod)
		if !ok {
			return value.Undefined(), NewScriptError(ErrTypeCoercion, "%s is not callable", name)
		}
		result, err := d.CallMethod(act, bound.Method, bound.Receiver, args)
		if err != nil {
			return value.Undefined(), err
		}
		push(result)

	case OpJump:
		if len(operand) < 2 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "jump: truncated")
		}
		offset := int16(binary.LittleEndian.Uint16(operand))
		act.SetPC(act.PC() + int(offset))

	case OpIfFalse:
		if len(operand) < 2 {
			return value.Undefined(), NewScriptError(ErrInternalInvariant, "if_false: truncated")
		}
		cond, err := pop()
		if err != nil {
			return value.Undefined(), err
		}
		if !truthy(cond) {
			offset := int16(binary.LittleEndian.Uint16(operand))
			act.SetPC(act.PC() + int(offset))
		}

	default:
		return value.Undefined(), NewScriptError(ErrInternalInvariant, "unknown opcode %d", op)
	}
	return value.Undefined(), nil
}

func numberOf(v value.Value) float64 {
	switch {
	case v.IsNumber():
		return v.NumberValue()
	case v.IsBool():
		if v.BoolValue() {
			return 1
		}
		return 0
	case v.IsString():
		var f float64
		fmt.Sscanf(v.StringValue(), "%g", &f)
		return f
	default:
		return math.NaN()
	}
}

func stringOf(v value.Value) string {
	switch {
	case v.IsString():
		return v.StringValue()
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsBool():
		if v.BoolValue() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		return fmt.Sprintf("%g", v.NumberValue())
	default:
		return "[object Object]"
	}
}

func truthy(v value.Value) bool {
	switch {
	case v.IsBool():
		return v.BoolValue()
	case v.IsUndefined(), v.IsNull():
		return false
	case v.IsNumber():
		return v.NumberValue() != 0
	case v.IsString():
		return v.StringValue() != ""
	default:
		return true
	}
}

func valuesEqual(a, b value.Value) bool {
	if a.Kind() != b.Kind() {
		if a.IsNumber() && b.IsNumber() {
			return a.NumberValue() == b.NumberValue()
		}
		return false
	}
	switch {
	case a.IsUndefined(), a.IsNull():
		return true
	case a.IsBool():
		return a.BoolValue() == b.BoolValue()
	case a.IsNumber():
		return a.NumberValue() == b.NumberValue()
	case a.IsString():
		return a.StringValue() == b.StringValue()
	case a.IsObject():
		return a.ObjectValue() == b.ObjectValue()
	default:
		return false
	}
}

// DispatchEvent runs the capture/at-target/bubble phase machine
// over ancestors (root-first, target-parent last) and target, invoking each
// selected listener's callable body in priority order.
func (d *Driver) DispatchEvent(ancestors []*Object, target *Object, evt *Event) {
	invoke := func(listener *Object, e *Event) error {
		if listener == nil || listener.Callable() == nil {
			return nil
		}
		_, err := d.CallMethod(nil, listener.Callable(), listener, nil)
		return err
	}
	Dispatch(ancestors, target, evt, invoke, d.trace)
}

func decodeInstruction2(code Bytecode, pc int) (Opcode, []byte, int, error) {
	b := code.Bytes()
	if pc >= len(b) {
		return 0, nil, pc, NewScriptError(ErrInternalInvariant, "pc out of range")
	}
	op := Opcode(b[pc])
	if !op.IsLongForm() {
		return op, nil, pc + 1, nil
	}
	if pc+3 > len(b) {
		return 0, nil, pc, NewScriptError(ErrInternalInvariant, "missing operand length prefix")
	}
	length := int(binary.LittleEndian.Uint16(b[pc+1 : pc+3]))
	start := pc + 3
	end := start + length
	if end > len(b) {
		return 0, nil, pc, NewScriptError(ErrInternalInvariant, "operand overruns buffer")
	}
	return op, b[start:end], end, nil
}

var _ gcarena.Traceable = (*Activation)(nil)
