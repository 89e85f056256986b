// Package value implements the tagged script-value variant shared by
// both VM1 and VM2. It favors a tag plus an untyped payload over a Go
// interface hierarchy,
// because the scripting surface needs cheap copies, struct equality for the
// primitive cases, and a single switch point for every opcode that inspects
// a value's type.
package value

import "github.com/flashruntime/corevm/internal/gcarena"

// Kind is the tag discriminating a Value's payload.
type Kind byte

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInteger
	KindNumber
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInteger, KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Heap is implemented by the concrete heap entity a KindObject Value points
// at (avm1.Object, avm2.Object, or any other GC-traced handle). Keeping this
// as a narrow interface in the value package -- rather than importing avm1
// or avm2 directly -- avoids a import cycle, since both of those packages
// need to hold Values.
type Heap interface {
	gcarena.Traceable
}

// Value is the tagged sum: Undefined, Null, Bool,
// Integer(i32), Number(f64), String (immutable shared text), Object(handle).
// It is intentionally a plain struct, not a pointer: callers copy Values
// freely the way the original passes `Value<'gc>` by value.
type Value struct {
	kind Kind
	b    bool
	i    int32
	n    float64
	s    string
	obj  Heap
}

func Undefined() Value { return Value{kind: KindUndefined} }
func Null() Value      { return Value{kind: KindNull} }

func Bool(b bool) Value    { return Value{kind: KindBool, b: b} }
func Integer(i int32) Value { return Value{kind: KindInteger, i: i} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Object(o Heap) Value {
	if o == nil {
		return Null()
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsBool() bool      { return v.kind == KindBool }
func (v Value) IsInteger() bool   { return v.kind == KindInteger }
func (v Value) IsNumber() bool    { return v.kind == KindNumber || v.kind == KindInteger }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsObject() bool    { return v.kind == KindObject }

// BoolValue returns the raw bool payload; callers must check IsBool first.
func (v Value) BoolValue() bool { return v.b }

// IntegerValue returns the raw int32 payload; callers must check IsInteger first.
func (v Value) IntegerValue() int32 { return v.i }

// NumberValue returns the float payload, widening an Integer if necessary.
func (v Value) NumberValue() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.n
}

// StringValue returns the raw string payload; callers must check IsString first.
func (v Value) StringValue() string { return v.s }

// ObjectValue returns the heap handle payload; callers must check IsObject first.
func (v Value) ObjectValue() Heap { return v.obj }

// GCTrace implements gcarena.Traceable: a Value only holds a child reference
// when it carries an object handle.
func (v Value) GCTrace(vis *gcarena.Visitor) {
	if v.kind == KindObject && v.obj != nil {
		vis.Visit(v.obj)
	}
}
