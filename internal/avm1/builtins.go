package avm1

import "github.com/flashruntime/corevm/internal/value"

// NewHasOwnPropertyMethod wraps Object.HasOwnProperty as a callable value,
// the native method every AVM1 object inherits from Object.prototype.
func NewHasOwnPropertyMethod(version uint8) *Object {
	fn := NewObject()
	fn.SetFunction(&FunctionData{
		Name:    "hasOwnProperty",
		Version: version,
		Native: func(this *Object, args []value.Value) value.Value {
			if this == nil || len(args) == 0 {
				return value.Bool(false)
			}
			return value.Bool(this.HasOwnProperty(version, ToStringValue(args[0])))
		},
	})
	return fn
}

// NewObjectPrototype builds a minimal stand-in for the global Object.prototype,
// carrying just the native methods every plain object needs in order for
// member-call dispatch (o.hasOwnProperty(...)) to resolve through the
// prototype chain the same way it would against the real Object.prototype.
func NewObjectPrototype(version uint8) *Object {
	proto := NewObject()
	proto.DefineOwn(version, "hasOwnProperty", value.Object(NewHasOwnPropertyMethod(version)), PropertyFlags{DontEnum: true})
	return proto
}
