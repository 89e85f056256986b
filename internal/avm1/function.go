package avm1

import "github.com/flashruntime/corevm/internal/value"

// NativeFunc is a host-implemented callable, used for builtin methods like
// hasOwnProperty that every object exposes without any script ever compiling
// them.
type NativeFunc func(this *Object, args []value.Value) value.Value

// PreloadFlags controls which implicit registers/suppressions a DefineFunction2
// declared for its callee.
type PreloadFlags struct {
	PreloadThis       bool
	PreloadArguments  bool
	PreloadSuper      bool
	PreloadRoot       bool
	PreloadParent     bool
	PreloadGlobal     bool
	SuppressThis      bool
	SuppressArguments bool
	SuppressSuper     bool
}

// ParamBinding pairs a declared parameter name with the register it should
// preload into; Register 0 means "bind by name in scope, not a register".
type ParamBinding struct {
	Name     string
	Register uint8
}

// FunctionData is the function backing variant of an Object: a
// closure over bytecode plus the scope it captured and the register
// allocation the function declared.
//
// Native, when non-nil, makes this a host-provided callable (the builtin
// methods every object exposes, e.g. hasOwnProperty) and Code/Params/Flags
// are ignored; the driver invokes Native directly instead of running
// bytecode.
type FunctionData struct {
	Name          string
	Version       uint8
	Code          Bytecode
	Params        []ParamBinding
	RegisterCount uint8
	Flags         PreloadFlags
	CapturedScope *Scope
	CapturedThis  *Object
	Native        NativeFunc
}
