package avm2

import (
	"errors"
	"fmt"

	"github.com/flashruntime/corevm/internal/value"
)

// Sentinel kinds a ScriptError can wrap. Unlike avm1.Fault, every one of
// these is genuinely script-catchable: it propagates through try/catch
// ranges and only reaches the host as a diagnostic if it escapes the
// activation stack entirely (§7).
var (
	ErrConstViolation    = errors.New("cannot assign to const property")
	ErrSealedClass       = errors.New("cannot add dynamic property to sealed class")
	ErrInternalInvariant = errors.New("internal invariant violated")
	ErrTypeCoercion      = errors.New("type coercion failure")
	ErrUncaughtThrow     = errors.New("uncaught script error")
)

// ScriptError is the VM2 error taxonomy's wrapper type: a Kind sentinel, a
// formatted message, and an optional script-visible Value payload (what a
// `throw expr` opcode actually threw). ScriptError implements error so it
// composes with errors.Is/errors.As the same way avm1.Fault does, but it is
// never swallowed the way a Fault is -- it walks the try-range machinery in
// Driver.Call until something catches it or it reaches the host.
type ScriptError struct {
	Kind    error
	Message string
	Payload value.Value
}

func NewScriptError(kind error, format string, args ...interface{}) *ScriptError {
	return &ScriptError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewThrownError wraps a script `throw` payload so it can travel the same
// error-return path as host-raised ScriptErrors.
func NewThrownError(payload value.Value) *ScriptError {
	return &ScriptError{Kind: ErrUncaughtThrow, Message: "script threw a value", Payload: payload}
}

func (e *ScriptError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *ScriptError) Unwrap() error { return e.Kind }

func (e *ScriptError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}
