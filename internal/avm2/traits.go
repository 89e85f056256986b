package avm2

import "github.com/flashruntime/corevm/internal/value"

// TraitKind distinguishes the five member shapes a class can declare.
type TraitKind uint8

const (
	TraitSlot TraitKind = iota
	TraitMethod
	TraitGetter
	TraitSetter
	TraitConst
)

// Trait is a single class-declared member, keyed by QName for both instance
// and class (static) trait tables. Exactly one of Method/Default is
// meaningful depending on Kind: Slot and Const carry a Type and a Default
// value; Method, Getter, Setter carry a Method body.
type Trait struct {
	Kind    TraitKind
	Name    QName
	Type    QName
	Default value.Value
	Method  *Method
}

func SlotTrait(name, typ QName, def value.Value) Trait {
	return Trait{Kind: TraitSlot, Name: name, Type: typ, Default: def}
}

func ConstTrait(name, typ QName, def value.Value) Trait {
	return Trait{Kind: TraitConst, Name: name, Type: typ, Default: def}
}

func MethodTrait(name QName, m *Method) Trait {
	return Trait{Kind: TraitMethod, Name: name, Method: m}
}

func GetterTrait(name QName, m *Method) Trait {
	return Trait{Kind: TraitGetter, Name: name, Method: m}
}

func SetterTrait(name QName, m *Method) Trait {
	return Trait{Kind: TraitSetter, Name: name, Method: m}
}

// IsConst reports whether writes through set_property must be rejected;
// init_property bypasses this check during construction (§4.5).
func (t Trait) IsConst() bool { return t.Kind == TraitConst }
