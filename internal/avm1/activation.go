package avm1

import (
	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/value"
)

// Activation is a per-frame execution record binding the SWF version
// that governs this code's semantics, a bytecode slice, a program counter,
// a scope chain, the immutable receiver, an optional arguments object, and
// an optional shared register file.
type Activation struct {
	version   uint8
	code      Bytecode
	pc        int
	scope     *Scope
	this      *Object
	arguments *Object
	isFunction bool
	registers *RegisterSet
}

// FromAction builds a non-function block activation (e.g. a frame's DoAction
// tag, or an ActionWith body before rescoping).
func FromAction(version uint8, code Bytecode, scope *Scope, this *Object, arguments *Object) *Activation {
	return &Activation{version: version, code: code, scope: scope, this: this, arguments: arguments}
}

// FromFunction builds a function-body activation (is_function=true, so an
// implicit return is permitted at end of code).
func FromFunction(version uint8, code Bytecode, scope *Scope, this *Object, arguments *Object) *Activation {
	return &Activation{version: version, code: code, scope: scope, this: this, arguments: arguments, isFunction: true}
}

// FromNothing builds a synthetic activation with empty code and a scope
// chain rooted at globals: used by tests and bootstrapping so the VM always
// has a current activation to operate against (ported from
// Activation::from_nothing, used throughout test_utils.rs).
func FromNothing(version uint8, globals *Object) *Activation {
	global := FromGlobal(globals)
	child := NewLocalChild(global)
	return &Activation{version: version, code: Empty(), scope: child, this: globals}
}

// ToRescope creates a new activation to run a block of code with a given
// scope, retaining `this`, `arguments`, and the register file; PC is
// reset to 0 and is_function is cleared.
func (a *Activation) ToRescope(code Bytecode, scope *Scope) *Activation {
	return &Activation{
		version:   a.version,
		code:      code,
		pc:        0,
		scope:     scope,
		this:      a.this,
		arguments: a.arguments,
		registers: a.registers,
	}
}

func (a *Activation) Version() uint8    { return a.version }
func (a *Activation) Code() Bytecode    { return a.code }
func (a *Activation) PC() int           { return a.pc }
func (a *Activation) SetPC(pc int)      { a.pc = pc }
func (a *Activation) Scope() *Scope     { return a.scope }
func (a *Activation) SetScope(s *Scope) { a.scope = s }
func (a *Activation) This() *Object     { return a.this }
func (a *Activation) Arguments() (*Object, bool) {
	return a.arguments, a.arguments != nil
}

// CanImplicitReturn distinguishes a function body (implicit return
// permitted) from an embedded block such as `with`.
func (a *Activation) CanImplicitReturn() bool { return a.isFunction }

// IsIdenticalFn reports whether other shares backing storage with this
// activation's code -- used to detect recursion into the same function
// body.
func (a *Activation) IsIdenticalFn(other Bytecode) bool {
	return a.code.SameBacking(other)
}

// Resolve returns Object(this) for "this"; Object(arguments) for
// "arguments" iff arguments exists; otherwise it delegates to the scope
// chain.
func (a *Activation) Resolve(name string) value.Value {
	if name == "this" {
		return value.Object(a.this)
	}
	if name == "arguments" && a.arguments != nil {
		return value.Object(a.arguments)
	}
	return a.scope.Resolve(a.version, name)
}

// IsDefined mirrors Resolve's shortcuts.
func (a *Activation) IsDefined(name string) bool {
	if name == "this" {
		return true
	}
	if name == "arguments" && a.arguments != nil {
		return true
	}
	return a.scope.IsDefined(a.version, name)
}

// Define writes a named local variable within this activation's scope.
func (a *Activation) Define(name string, v value.Value) {
	a.scope.Define(a.version, name, v)
}

// HasLocalRegisters reports whether a register file is allocated.
func (a *Activation) HasLocalRegisters() bool { return a.registers != nil }

// AllocateLocalRegisters installs a fresh register file of size num.
func (a *Activation) AllocateLocalRegisters(num uint8) {
	a.registers = NewRegisterSet(num)
}

// LocalRegister returns Undefined if no register file exists or id is out
// of range; otherwise the register's value.
func (a *Activation) LocalRegister(id uint8) value.Value {
	if a.registers == nil {
		return value.Undefined()
	}
	return a.registers.Get(id)
}

// SetLocalRegister is a silent no-op if no register file exists or id is
// out of range.
func (a *Activation) SetLocalRegister(id uint8, v value.Value) {
	if a.registers == nil {
		return
	}
	a.registers.Set(id, v)
}

// GCTrace visits the scope, this, arguments, and the (possibly shared)
// register file.
func (a *Activation) GCTrace(v *gcarena.Visitor) {
	if a.scope != nil {
		v.Visit(a.scope)
	}
	if a.this != nil {
		v.Visit(a.this)
	}
	if a.arguments != nil {
		v.Visit(a.arguments)
	}
	if a.registers != nil {
		v.Visit(a.registers)
	}
}
