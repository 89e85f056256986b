package avm1

import (
	"math"
	"strconv"
	"strings"

	"github.com/flashruntime/corevm/internal/value"
)

// ToNumber coerces v the way ActionAdd/ActionSubtract and friends do: Bool
// true/false become 1/0, numeric strings parse, the empty (or all-blank)
// string, null and undefined become 0, and everything else (non-numeric
// strings, and Object, since VM1 Object-to-primitive coercion is out of
// scope for the core numeric path) becomes NaN.
func ToNumber(v value.Value) float64 {
	switch v.Kind() {
	case value.KindInteger, value.KindNumber:
		return v.NumberValue()
	case value.KindBool:
		if v.BoolValue() {
			return 1
		}
		return 0
	case value.KindString:
		s := strings.TrimSpace(v.StringValue())
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case value.KindNull, value.KindUndefined:
		return 0
	default:
		return math.NaN()
	}
}

// ToBoolean applies AVM1's truthiness rules.
func ToBoolean(v value.Value) bool {
	switch v.Kind() {
	case value.KindBool:
		return v.BoolValue()
	case value.KindInteger, value.KindNumber:
		n := v.NumberValue()
		return n != 0 && !math.IsNaN(n)
	case value.KindString:
		return v.StringValue() != ""
	case value.KindNull, value.KindUndefined:
		return false
	case value.KindObject:
		return v.ObjectValue() != nil
	default:
		return false
	}
}

// ToStringValue renders v for string-context opcodes and for `trace`.
func ToStringValue(v value.Value) string {
	switch v.Kind() {
	case value.KindUndefined:
		return "undefined"
	case value.KindNull:
		return "null"
	case value.KindBool:
		if v.BoolValue() {
			return "true"
		}
		return "false"
	case value.KindInteger:
		return strconv.FormatInt(int64(v.IntegerValue()), 10)
	case value.KindNumber:
		n := v.NumberValue()
		if math.IsNaN(n) {
			return "NaN"
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	case value.KindString:
		return v.StringValue()
	case value.KindObject:
		return "[object Object]"
	default:
		return ""
	}
}

// TypeOf implements the version-gated special cases: `typeof` on a MovieClip
// returns "movieclip"; on null returns "null" (never "object").
func TypeOf(v value.Value, isMovieClip func(*Object) bool) string {
	switch v.Kind() {
	case value.KindUndefined:
		return "undefined"
	case value.KindNull:
		return "null"
	case value.KindBool:
		return "boolean"
	case value.KindInteger, value.KindNumber:
		return "number"
	case value.KindString:
		return "string"
	case value.KindObject:
		if obj, ok := v.ObjectValue().(*Object); ok {
			if obj.AsFunction() != nil {
				return "function"
			}
			if isMovieClip != nil && isMovieClip(obj) {
				return "movieclip"
			}
		}
		return "object"
	default:
		return "undefined"
	}
}

// LessThanLegacy implements the pre-v5 ActionLess: numeric coercion of both
// operands; Undefined if either coerces to NaN.
func LessThanLegacy(a, b value.Value) value.Value {
	na, nb := ToNumber(a), ToNumber(b)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return value.Undefined()
	}
	return value.Bool(na < nb)
}

// GreaterThanLegacy mirrors LessThanLegacy with operands swapped.
func GreaterThanLegacy(a, b value.Value) value.Value {
	return LessThanLegacy(b, a)
}

// LessThan2 implements the v5+ typed lessThan2: string-vs-string comparison
// is lexicographic; otherwise both operands are coerced to numbers. Unlike
// the legacy opcode this never returns Undefined -- a NaN comparison is
// simply false, matching the reference runtime's ActionLess2.
func LessThan2(a, b value.Value) value.Value {
	if a.IsString() && b.IsString() {
		return value.Bool(a.StringValue() < b.StringValue())
	}
	na, nb := ToNumber(a), ToNumber(b)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return value.Bool(false)
	}
	return value.Bool(na < nb)
}

// GreaterThan2 mirrors LessThan2 with operands swapped.
func GreaterThan2(a, b value.Value) value.Value {
	return LessThan2(b, a)
}

// Equals2 implements the v5+ typed equals2 (loose equality with JS-like
// abstract coercion rules) and also backs the pre-v5 ActionEquals opcode,
// since the reference runtime's pre-v5 loose-equality semantics already
// coincide with this coercion table (only lessThan/greaterThan gained a
// typed sibling at v5).
func Equals2(a, b value.Value) bool {
	if a.Kind() == b.Kind() {
		return StrictEquals(a, b)
	}
	if (a.IsUndefined() || a.IsNull()) && (b.IsUndefined() || b.IsNull()) {
		return true
	}
	if a.IsUndefined() || a.IsNull() || b.IsUndefined() || b.IsNull() {
		return false
	}
	if a.IsBool() {
		return Equals2(value.Number(boolToFloat(a.BoolValue())), b)
	}
	if b.IsBool() {
		return Equals2(a, value.Number(boolToFloat(b.BoolValue())))
	}
	if a.IsNumber() || b.IsNumber() {
		return ToNumber(a) == ToNumber(b)
	}
	return false
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// StrictEquals implements `===`: same type and same value, no coercion
// (scenario "strictly_equals": a="1" (string), b=1 (number) -> false).
func StrictEquals(a, b value.Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return a.NumberValue() == b.NumberValue()
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case value.KindUndefined, value.KindNull:
		return true
	case value.KindBool:
		return a.BoolValue() == b.BoolValue()
	case value.KindString:
		return a.StringValue() == b.StringValue()
	case value.KindObject:
		return a.ObjectValue() == b.ObjectValue()
	default:
		return false
	}
}
