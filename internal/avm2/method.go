package avm2

import "github.com/flashruntime/corevm/internal/value"

// BuiltinFunc is a host-implemented method body. It receives the activation
// that is calling it (for diagnostics/heap access), the receiver, and the
// argument list, and returns a value or a script-visible error.
type BuiltinFunc func(act *Activation, this *Object, args []value.Value) (value.Value, error)

// Method is a tagged variant: Builtin(function) or Scripted(bytecode plus
// parameter and register counts; no captured scope is stored). Both invocation shapes go through Driver.CallMethod so
// callers never need to know which one they hold (§9 design note).
type Method struct {
	Name    string
	Builtin BuiltinFunc

	Code          Bytecode
	ParamCount    int
	RegisterCount int
}

func NewBuiltinMethod(name string, fn BuiltinFunc) *Method {
	return &Method{Name: name, Builtin: fn}
}

func NewScriptedMethod(name string, code Bytecode, paramCount, registerCount int) *Method {
	return &Method{Name: name, Code: code, ParamCount: paramCount, RegisterCount: registerCount}
}

func (m *Method) IsBuiltin() bool { return m.Builtin != nil }
