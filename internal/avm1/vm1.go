// Package avm1 implements VM1: the stack-based, dynamically-typed
// interpreter whose observable semantics depend on the container's declared
// SWF version.
package avm1

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/flashruntime/corevm/internal/diag"
	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/host"
	"github.com/flashruntime/corevm/internal/value"
)

// returnSignal is a control-flow sentinel: OpReturn wraps its value in one
// and runActivation propagates it up through any enclosing rescoped (with)
// activations until the function-level caller unwraps it. It is never
// surfaced to the host as a diagnostic.
type returnSignal struct{ value value.Value }

func (r *returnSignal) Error() string { return "return" }

// Driver is the VM1 activation stack, opcode fetch/execute loop, and
// trace emission, parameterized by the host ActionContext.
type Driver struct {
	mu          sync.Mutex
	stack       []*Activation
	globals     *Object
	ctx         *host.Context
	trace       diag.Sink
	opBudget    int64 // remaining opcode budget; <=0 means unlimited
	opsExecuted uint64
}

// NewDriver constructs a VM1 driver rooted at a fresh global object.
func NewDriver(ctx *host.Context, trace diag.Sink) *Driver {
	globals := NewObject()
	d := &Driver{globals: globals, ctx: ctx, trace: trace}
	ctx.GC.AddRoot(globals)
	return d
}

// Globals returns the shared global binding object.
func (d *Driver) Globals() *Object { return d.globals }

// SetExecutionBudget installs a host-provided opcode budget. Zero or negative means unlimited.
func (d *Driver) SetExecutionBudget(n int64) { d.opBudget = n }

// pushActivation registers act as a GC root and as the current frame.
func (d *Driver) pushActivation(act *Activation) {
	d.mu.Lock()
	d.stack = append(d.stack, act)
	d.mu.Unlock()
	d.ctx.GC.AddRoot(act)
}

// popActivation pops the current frame and releases its GC root.
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

// CurrentActivation returns the top of the activation stack, or nil.
func (d *Driver) CurrentActivation() *Activation {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stack) == 0 {
		return nil
	}
	return d.stack[len(d.stack)-1]
}

// Depth reports the activation stack depth.
func (d *Driver) Depth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.stack)
}

// RunFromNothing bootstraps a synthetic activation (the test/bootstrap
// entry point) and runs code against it.
func (d *Driver) RunFromNothing(version uint8, code Bytecode) error {
	act := FromNothing(version, d.globals)
	act.SetPC(0)
	return d.InsertStackFrame(FromAction(version, code, act.Scope(), act.This(), nil))
}

// InsertStackFrame pushes act and transfers control, exactly mirroring the
// reference runtime's insert_stack_frame: it runs until the top frame's PC
// exits its slice or an explicit return fires.
func (d *Driver) InsertStackFrame(act *Activation) error {
	d.pushActivation(act)
	defer d.popActivation()
	_, err := d.runActivation(act)
	if err == nil {
		return nil
	}
	if _, ok := err.(*returnSignal); ok {
		return nil
	}
	if fault, ok := err.(*Fault); ok {
		d.logDiagnostic(fmt.Sprintf("avm1 fault: %s", fault.Error()))
		return nil
	}
	return err
}

// Call invokes a script function value with the given receiver and
// arguments, returning its result. Non-callable values silently yield
// Undefined (VM1 never raises script-visible errors).
func (d *Driver) Call(fnVal value.Value, this *Object, args []value.Value) value.Value {
	if !fnVal.IsObject() {
		return value.Undefined()
	}
	obj, ok := fnVal.ObjectValue().(*Object)
	if !ok {
		return value.Undefined()
	}
	fd := obj.AsFunction()
	if fd == nil {
		return value.Undefined()
	}

	if fd.Native != nil {
		return fd.Native(this, args)
	}

	var argsObj *Object
	if !fd.Flags.SuppressArguments {
		argsObj = d.buildArgumentsObject(fd.Version, args)
	}

	scope := NewLocalChild(fd.CapturedScope)
	act := FromFunction(fd.Version, fd.Code, scope, this, argsObj)
	if fd.RegisterCount > 0 {
		act.AllocateLocalRegisters(fd.RegisterCount)
	}

	nextReg := uint8(1)
	preload := func(enabled bool, v value.Value) {
		if !enabled || !act.HasLocalRegisters() || nextReg > fd.RegisterCount {
			return
		}
		act.SetLocalRegister(nextReg, v)
		nextReg++
	}
	preload(fd.Flags.PreloadThis, value.Object(this))
	if argsObj != nil {
		preload(fd.Flags.PreloadArguments, value.Object(argsObj))
	}
	preload(fd.Flags.PreloadSuper, value.Undefined())
	preload(fd.Flags.PreloadRoot, value.Object(d.rootObject()))
	preload(fd.Flags.PreloadParent, value.Undefined())
	preload(fd.Flags.PreloadGlobal, value.Object(d.globals))

	for i, p := range fd.Params {
		var v value.Value
		if i < len(args) {
			v = args[i]
		} else {
			v = value.Undefined()
		}
		if p.Register > 0 && act.HasLocalRegisters() {
			act.SetLocalRegister(p.Register, v)
		} else if !fd.Flags.SuppressThis || p.Name != "this" {
			act.Define(p.Name, v)
		}
	}

	d.pushActivation(act)
	defer d.popActivation()

	result, err := d.runActivation(act)
	if rs, ok := err.(*returnSignal); ok {
		return rs.value
	}
	if fault, ok := err.(*Fault); ok {
		d.logDiagnostic(fmt.Sprintf("avm1 fault: %s", fault.Error()))
		return value.Undefined()
	}
	return result
}

func (d *Driver) buildArgumentsObject(version uint8, args []value.Value) *Object {
	obj := NewObject()
	for i, a := range args {
		obj.DefineOwn(version, fmt.Sprintf("%d", i), a, PropertyFlags{DontEnum: true})
	}
	obj.DefineOwn(version, "length", value.Integer(int32(len(args))), PropertyFlags{DontEnum: true})
	return obj
}

// rootObject exposes the host's root clip as a property-bearing object for
// _root/preload-root resolution. The display list itself is out of scope;
// this only surfaces a stable handle scripts can pass around.
func (d *Driver) rootObject() *Object {
	return d.globals
}

func (d *Driver) logDiagnostic(msg string) {
	if d.trace != nil {
		d.trace.TraceLine(msg)
	}
}

// invoke adapts Driver.Call to the FunctionInvoker signature Object.Get/Set
// need for getter/setter dispatch.
func (d *Driver) invoke(fn value.Value, this *Object, args []value.Value) value.Value {
	return d.Call(fn, this, args)
}

// runActivation executes act from its current PC until its code slice is
// exhausted (an implicit return if act.CanImplicitReturn(), otherwise block
// completion) or an OpReturn/fault fires. The returned error is either nil
// (normal completion), a *returnSignal carrying the value to propagate, or
// a *Fault (malformed bytecode -- the activation chain aborts up to the
// frame boundary).
func (d *Driver) runActivation(act *Activation) (value.Value, error) {
	stack := make([]value.Value, 0, 16)
	push := func(v value.Value) { stack = append(stack, v) }
	pop := func() (value.Value, error) {
		if len(stack) == 0 {
			return value.Undefined(), NewFault(ErrStackUnderflow, act.PC(), "pop on empty stack")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for {
		d.opsExecuted++
		if d.opBudget > 0 {
			d.opBudget--
			if d.opBudget == 0 {
				return value.Undefined(), NewFault(ErrExecutionBudget, act.PC(),
					"opcode budget exhausted after %s opcodes", humanize.Comma(int64(d.opsExecuted)))
			}
		}

		code := act.Code()
		if act.PC() >= code.Len() {
			return value.Undefined(), nil
		}

		op, operand, next, derr := decodeInstruction(code, act.PC())
		if derr != nil {
			return value.Undefined(), derr
		}
		act.SetPC(next)

		switch op {
		case OpPop:
			if _, err := pop(); err != nil {
				return value.Undefined(), err
			}

		case OpAdd:
			b, err := pop()
			if err != nil {
				return value.Undefined(), err
			}
			a, err := pop()
			if err != nil {
				return value.Undefined(), err
			}
			push(value.Number(ToNumber(a) + ToNumber(b)))

		case OpSubtract:
			b, _ := pop()
			a, _ := pop()
			push(value.Number(ToNumber(a) - ToNumber(b)))

		case OpMultiply:
			b, _ := pop()
			a, _ := pop()
			push(value.Number(ToNumber(a) * ToNumber(b)))

		case OpDivide:
			b, _ := pop()
			a, _ := pop()
			nb := ToNumber(b)
			if nb == 0 {
				push(value.Number(math.NaN()))
			} else {
				push(value.Number(ToNumber(a) / nb))
			}

		case OpModulo:
			b, _ := pop()
			a, _ := pop()
			push(value.Number(math.Mod(ToNumber(a), ToNumber(b))))

		case OpNot:
			a, _ := pop()
			push(value.Bool(!ToBoolean(a)))

		case OpAnd:
			b, _ := pop()
			a, _ := pop()
			push(value.Bool(ToBoolean(a) && ToBoolean(b)))

		case OpOr:
			b, _ := pop()
			a, _ := pop()
			push(value.Bool(ToBoolean(a) || ToBoolean(b)))

		case OpToInteger:
			a, _ := pop()
			push(value.Integer(int32(ToNumber(a))))

		case OpToNumber:
			a, _ := pop()
			push(value.Number(ToNumber(a)))

		case OpToString:
			a, _ := pop()
			push(value.String(ToStringValue(a)))

		case OpTypeOf:
			a, _ := pop()
			push(value.String(TypeOf(a, d.isMovieClip)))

		case OpLess:
			b, _ := pop()
			a, _ := pop()
			push(LessThanLegacy(a, b))

		case OpGreater:
			b, _ := pop()
			a, _ := pop()
			push(GreaterThanLegacy(a, b))

		case OpLess2:
			b, _ := pop()
			a, _ := pop()
			push(LessThan2(a, b))

		case OpGreater2:
			b, _ := pop()
			a, _ := pop()
			push(GreaterThan2(a, b))

		case OpEquals, OpEquals2:
			b, _ := pop()
			a, _ := pop()
			push(value.Bool(Equals2(a, b)))

		case OpStrictEquals:
			b, _ := pop()
			a, _ := pop()
			push(value.Bool(StrictEquals(a, b)))

		case OpGetVariable:
			nameVal, _ := pop()
			name := ToStringValue(nameVal)
			push(act.Resolve(name))

		case OpSetVariable:
			v, _ := pop()
			nameVal, _ := pop()
			act.Scope().Set(act.Version(), ToStringValue(nameVal), v)

		case OpDefineLocal:
			v, _ := pop()
			nameVal, _ := pop()
			act.Define(ToStringValue(nameVal), v)

		case OpDefineLocal2:
			nameVal, _ := pop()
			act.Define(ToStringValue(nameVal), value.Undefined())

		case OpGetMember:
			nameVal, _ := pop()
			objVal, _ := pop()
			obj, ok := objVal.ObjectValue().(*Object)
			if !ok {
				push(value.Undefined())
				break
			}
			push(obj.Get(act.Version(), ToStringValue(nameVal), obj, d.invoke))

		case OpSetMember:
			v, _ := pop()
			nameVal, _ := pop()
			objVal, _ := pop()
			if obj, ok := objVal.ObjectValue().(*Object); ok {
				obj.Set(act.Version(), ToStringValue(nameVal), v, d.invoke)
			}

		case OpDelete:
			nameVal, _ := pop()
			objVal, _ := pop()
			if obj, ok := objVal.ObjectValue().(*Object); ok {
				obj.DeleteOwn(act.Version(), ToStringValue(nameVal))
			}

		case OpInitObject:
			countVal, _ := pop()
			n := int(ToNumber(countVal))
			obj := NewObject()
			for i := 0; i < n; i++ {
				v, _ := pop()
				nameVal, _ := pop()
				obj.DefineOwn(act.Version(), ToStringValue(nameVal), v, PropertyFlags{})
			}
			push(value.Object(obj))

		case OpInitArray:
			countVal, _ := pop()
			n := int(ToNumber(countVal))
			obj := NewObject()
			vals := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				v, _ := pop()
				vals[i] = v
			}
			for i, v := range vals {
				obj.DefineOwn(act.Version(), fmt.Sprintf("%d", i), v, PropertyFlags{})
			}
			obj.SetArray(&ArrayData{Length: n})
			obj.DefineOwn(act.Version(), "length", value.Integer(int32(n)), PropertyFlags{DontEnum: true})
			push(value.Object(obj))

		case OpEnumerate:
			objVal, _ := pop()
			push(value.Null())
			if obj, ok := objVal.ObjectValue().(*Object); ok {
				names := obj.Enumerate()
				for i := len(names) - 1; i >= 0; i-- {
					push(value.String(names[i]))
				}
			}

		case OpCallFunction:
			nameVal, _ := pop()
			nargsVal, _ := pop()
			n := int(ToNumber(nargsVal))
			args := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i], _ = pop()
			}
			fn := act.Resolve(ToStringValue(nameVal))
			push(d.Call(fn, act.This(), args))

		case OpCallMethod:
			nameVal, _ := pop()
			objVal, _ := pop()
			nargsVal, _ := pop()
			n := int(ToNumber(nargsVal))
			args := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i], _ = pop()
			}
			obj, ok := objVal.ObjectValue().(*Object)
			if !ok {
				push(value.Undefined())
				break
			}
			name := ToStringValue(nameVal)
			var fn value.Value
			if name == "" {
				fn = objVal
			} else {
				fn = obj.Get(act.Version(), name, obj, d.invoke)
			}
			push(d.Call(fn, obj, args))

		case OpReturn:
			v, _ := pop()
			return v, &returnSignal{value: v}

		case OpTrace:
			v, _ := pop()
			d.logDiagnostic(ToStringValue(v))

		case OpNewObject:
			nargsVal, _ := pop()
			n := int(ToNumber(nargsVal))
			for i := 0; i < n; i++ {
				pop()
			}
			nameVal, _ := pop()
			_ = nameVal
			push(value.Object(NewObjectWithProto(nil)))

		case OpPush:
			v, err := decodePushOperand(operand, act)
			if err != nil {
				return value.Undefined(), err
			}
			push(v)

		case OpStoreRegister:
			if len(operand) < 1 {
				return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "store_register")
			}
			if len(stack) == 0 {
				return value.Undefined(), NewFault(ErrStackUnderflow, act.PC(), "store_register")
			}
			act.SetLocalRegister(operand[0], stack[len(stack)-1])

		case OpJump:
			if len(operand) < 2 {
				return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "jump")
			}
			offset := int16(binary.LittleEndian.Uint16(operand))
			target := act.PC() + int(offset)
			if target < 0 || target > code.Len() {
				return value.Undefined(), NewFault(ErrBadJumpTarget, act.PC(), "jump target %d", target)
			}
			act.SetPC(target)

		case OpIf:
			if len(operand) < 2 {
				return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "if")
			}
			cond, _ := pop()
			if ToBoolean(cond) {
				offset := int16(binary.LittleEndian.Uint16(operand))
				target := act.PC() + int(offset)
				if target < 0 || target > code.Len() {
					return value.Undefined(), NewFault(ErrBadJumpTarget, act.PC(), "if target %d", target)
				}
				act.SetPC(target)
			}

		case OpWith:
			if len(operand) < 2 {
				return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "with")
			}
			size := int(binary.LittleEndian.Uint16(operand))
			objVal, _ := pop()
			obj, _ := objVal.ObjectValue().(*Object)
			if obj == nil {
				obj = NewObject()
			}
			blockStart := act.PC()
			blockEnd := blockStart + size
			if blockEnd > code.Len() {
				return value.Undefined(), NewFault(ErrBadJumpTarget, act.PC(), "with block overruns code")
			}
			childScope := NewWithChild(act.Scope(), obj)
			childAct := act.ToRescope(code.Sub(blockStart, blockEnd), childScope)
			_, err := d.runActivation(childAct)
			if err != nil {
				return value.Undefined(), err
			}
			act.SetPC(blockEnd)

		default:
			return value.Undefined(), NewFault(ErrUnknownOpcode, act.PC(), "opcode %d", op)
		}
	}
}

func (d *Driver) isMovieClip(obj *Object) bool {
	if dc, ok := obj.Native().(interface{ IsMovieClip() bool }); ok {
		return dc.IsMovieClip()
	}
	return false
}

func decodeInstruction(code Bytecode, pc int) (Opcode, []byte, int, error) {
	b := code.Bytes()
	op := Opcode(b[pc])
	if !op.IsLongForm() {
		return op, nil, pc + 1, nil
	}
	if pc+3 > len(b) {
		return 0, nil, pc, NewFault(ErrTruncatedOperand, pc, "missing length prefix")
	}
	length := int(binary.LittleEndian.Uint16(b[pc+1 : pc+3]))
	start := pc + 3
	end := start + length
	if end > len(b) {
		return 0, nil, pc, NewFault(ErrTruncatedOperand, pc, "operand overruns buffer")
	}
	return op, b[start:end], end, nil
}

func decodePushOperand(operand []byte, act *Activation) (value.Value, error) {
	if len(operand) < 1 {
		return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "push: missing type tag")
	}
	switch PushType(operand[0]) {
	case PushUndefined:
		return value.Undefined(), nil
	case PushNull:
		return value.Null(), nil
	case PushBool:
		if len(operand) < 2 {
			return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "push bool")
		}
		return value.Bool(operand[1] != 0), nil
	case PushInteger:
		if len(operand) < 5 {
			return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "push integer")
		}
		return value.Integer(int32(binary.LittleEndian.Uint32(operand[1:5]))), nil
	case PushNumber:
		if len(operand) < 9 {
			return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "push number")
		}
		bits := binary.LittleEndian.Uint64(operand[1:9])
		return value.Number(math.Float64frombits(bits)), nil
	case PushString:
		if len(operand) < 3 {
			return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "push string")
		}
		n := int(binary.LittleEndian.Uint16(operand[1:3]))
		if len(operand) < 3+n {
			return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "push string body")
		}
		return value.String(string(operand[3 : 3+n])), nil
	case PushRegister:
		if len(operand) < 2 {
			return value.Undefined(), NewFault(ErrTruncatedOperand, act.PC(), "push register")
		}
		return act.LocalRegister(operand[1]), nil
	default:
		return value.Undefined(), NewFault(ErrUnknownPushType, act.PC(), "push type %d", operand[0])
	}
}

var _ gcarena.Traceable = (*Activation)(nil)
