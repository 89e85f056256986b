package avm2

import (
	"sync"

	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/value"
)

// Object is VM2's heap entity: every instance references a Class, and
// property access consults the class's trait tables first, falling back to
// a dynamic slot map for non-sealed classes (§4.5). Unlike VM1's prototype
// object, there is no prototype link -- member resolution walks the class's
// inheritance chain instead.
type Object struct {
	mu sync.Mutex

	class  *Class
	sealed bool

	// traitSlots holds storage for Slot/Const traits, keyed by the QName the
	// trait was declared under (so a shadowed trait on a subclass gets its
	// own storage cell, not the superclass's).
	traitSlots map[QName]value.Value

	// dynamic holds ad-hoc public-namespace properties on non-sealed
	// classes; dynamicOrder preserves insertion order for enumeration.
	dynamic      map[string]value.Value
	dynamicOrder []string

	dispatch *DispatchList

	// callable, when set, makes this object directly invokable as an event
	// listener or function value (NewCallableObject), the way a bare
	// Function closure stands in for a listener in script.
	callable *Method
}

// NewObject constructs an instance of class. sealed classes (the common
// case for built-ins and user-declared classes without `dynamic`) reject
// property writes that don't resolve to a trait.
func NewObject(class *Class, sealed bool) *Object {
	return &Object{
		class:      class,
		sealed:     sealed,
		traitSlots: make(map[QName]value.Value),
	}
}

// NewCallableObject wraps m as a directly-invokable object with no backing
// class -- used for event listeners and other function-value positions
// that don't need a trait table of their own.
func NewCallableObject(m *Method) *Object {
	return &Object{callable: m, sealed: true, traitSlots: make(map[QName]value.Value)}
}

func (o *Object) Class() *Class      { return o.class }
func (o *Object) Callable() *Method  { return o.callable }

// Dispatch returns this object's DispatchList. If the object is an
// EventDispatcher instance (or otherwise carries a dispatch_list trait
// slot), that slot's list is authoritative -- it's the same list
// addEventListener/removeEventListener mutate through script. Otherwise a
// bare host-side list is lazily attached, for dispatching on plain objects
// that were never routed through EventDispatcher's constructor.
func (o *Object) Dispatch() *DispatchList {
	o.mu.Lock()
	defer o.mu.Unlock()
	if v, ok := o.traitSlots[dispatchListSlotName]; ok {
		if dl, ok := v.ObjectValue().(*DispatchList); ok {
			return dl
		}
	}
	if o.dispatch == nil {
		o.dispatch = NewDispatchList()
	}
	return o.dispatch
}

// GetProperty resolves name against the class trait chain first, then the
// dynamic slot map. Getter traits are invoked through act; a nil act is
// only safe when the resolved trait cannot be a getter (callers that know
// they're reading a plain slot may still pass nil, but GetProperty itself
// never assumes that).
func (o *Object) GetProperty(act *Activation, name QName) (value.Value, error) {
	o.mu.Lock()
	class := o.class
	o.mu.Unlock()

	if class != nil {
		if t, owner, ok := class.ResolveInstanceTrait(name); ok {
			return o.readTrait(act, t, owner)
		}
	}

	if !o.sealed {
		o.mu.Lock()
		v, ok := o.dynamic[name.Name]
		o.mu.Unlock()
		if ok {
			return v, nil
		}
	}
	return value.Undefined(), nil
}

func (o *Object) readTrait(act *Activation, t Trait, owner *Class) (value.Value, error) {
	switch t.Kind {
	case TraitSlot, TraitConst:
		o.mu.Lock()
		v, ok := o.traitSlots[t.Name]
		o.mu.Unlock()
		if ok {
			return v, nil
		}
		return t.Default, nil
	case TraitGetter:
		return act.driver.CallMethod(act, t.Method, o, nil)
	case TraitMethod:
		return value.Object(NewBoundMethod(t.Method, o)), nil
	default:
		return value.Undefined(), nil
	}
}

// SetProperty assigns name, enforcing const protection: writing to a Const
// trait after construction is a script error. Non-trait writes on a
// non-sealed class fall through to the dynamic slot map; on a sealed class
// they are rejected the same way the reference runtime rejects writes to
// undeclared properties on a non-dynamic class.
func (o *Object) SetProperty(act *Activation, name QName, v value.Value) error {
	o.mu.Lock()
	class := o.class
	o.mu.Unlock()

	if class != nil {
		if t, _, ok := class.ResolveInstanceTrait(name); ok {
			if t.IsConst() {
				return NewScriptError(ErrConstViolation, "cannot assign to const property %s", name)
			}
			if t.Kind == TraitSetter {
				_, err := act.driver.CallMethod(act, t.Method, o, []value.Value{v})
				return err
			}
			o.mu.Lock()
			o.traitSlots[t.Name] = v
			o.mu.Unlock()
			return nil
		}
	}

	if o.sealed {
		return NewScriptError(ErrSealedClass, "cannot add dynamic property %s to sealed class %s", name, classNameOrAnon(class))
	}
	o.mu.Lock()
	if _, exists := o.dynamic[name.Name]; !exists {
		o.dynamicOrder = append(o.dynamicOrder, name.Name)
	}
	if o.dynamic == nil {
		o.dynamic = make(map[string]value.Value)
	}
	o.dynamic[name.Name] = v
	o.mu.Unlock()
	return nil
}

// InitProperty bypasses const protection; it is what the constructor uses
// to populate slots (including ruffle-private ones) during instance_init.
func (o *Object) InitProperty(name QName, v value.Value) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.traitSlots[name] = v
	return nil
}

func classNameOrAnon(c *Class) string {
	if c == nil {
		return "<anonymous>"
	}
	return c.Name.String()
}

// GCTrace visits every value this object holds: trait slots, dynamic slots,
// and its dispatch list (if attached).
func (o *Object) GCTrace(vis *gcarena.Visitor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, v := range o.traitSlots {
		v.GCTrace(vis)
	}
	for _, v := range o.dynamic {
		v.GCTrace(vis)
	}
	if o.dispatch != nil {
		vis.Visit(o.dispatch)
	}
}

// BoundMethod is the callable heap value produced when a Method trait is
// read as a property: it pairs the method body with the receiver it was
// read off of, the way a bound function reference behaves in script.
type BoundMethod struct {
	Method   *Method
	Receiver *Object
}

func NewBoundMethod(m *Method, receiver *Object) *BoundMethod {
	return &BoundMethod{Method: m, Receiver: receiver}
}

func (b *BoundMethod) GCTrace(vis *gcarena.Visitor) {
	if b.Receiver != nil {
		vis.Visit(b.Receiver)
	}
}

var _ gcarena.Traceable = (*Object)(nil)
var _ gcarena.Traceable = (*BoundMethod)(nil)
