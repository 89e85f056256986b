package avm1

import (
	"strings"
	"sync"

	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/value"
)

// foldKey returns the key used to compare identifiers at the given SWF
// version: folded to lowercase below v7, left exact at v7+.
func foldKey(version uint8, name string) string {
	if version <= 6 {
		return strings.ToLower(name)
	}
	return name
}

// PropertyFlags mirror the three flags a VM1 property slot can carry.
type PropertyFlags struct {
	DontEnum   bool
	DontDelete bool
	ReadOnly   bool
}

// propertySlot is either a data slot or an accessor pair, never both.
type propertySlot struct {
	value      value.Value
	getter     *value.Value
	setter     *value.Value
	isAccessor bool
	flags      PropertyFlags
}

// Object is a prototype-bearing heap entity with an insertion-ordered
// property map plus an optional backing variant (function, array, native).
// Lookup is case-preserving in storage but case-folded for comparison per
// the active SWF version, so the same Object instance can be shared across
// activations compiled at different versions (e.g. the global object).
type Object struct {
	mu sync.Mutex

	keys  []string                // insertion order, original case
	slots map[string]*propertySlot // keyed by original case
	fold  map[string]string       // lowercase(name) -> canonical stored key

	proto *Object

	function *FunctionData
	array    *ArrayData
	native   interface{}
}

// ArrayData backs Array-variant objects (dense/sparse PHP-style storage is
// overkill here; AVM1 arrays are just objects with numeric-looking keys and
// a length convention, so this only tracks the length hint).
type ArrayData struct {
	Length int
}

// NewObject allocates an empty object with no prototype.
func NewObject() *Object {
	return &Object{
		slots: make(map[string]*propertySlot, 8),
		fold:  make(map[string]string, 8),
	}
}

// NewObjectWithProto allocates an empty object linked to proto.
func NewObjectWithProto(proto *Object) *Object {
	o := NewObject()
	o.proto = proto
	return o
}

// SetPrototype rewires the prototype link (e.g. `obj.prototype = other`).
func (o *Object) SetPrototype(proto *Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.proto = proto
}

// Prototype returns the current prototype link, or nil.
func (o *Object) Prototype() *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.proto
}

// AsFunction exposes the function backing variant, if any.
func (o *Object) AsFunction() *FunctionData {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.function
}

// SetFunction installs a function backing variant, turning this object into
// a callable.
func (o *Object) SetFunction(fn *FunctionData) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.function = fn
}

// AsArray exposes the array backing variant, if any.
func (o *Object) AsArray() *ArrayData {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.array
}

// SetArray installs an array backing variant.
func (o *Object) SetArray(a *ArrayData) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.array = a
}

// Native returns the host-side native binding (e.g. a MovieClip reference),
// if one was attached.
func (o *Object) Native() interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.native
}

// SetNative attaches a host-side native binding.
func (o *Object) SetNative(n interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.native = n
}

// canonicalKeyLocked resolves name to the key already used to store it
// (honoring the version's fold rule), or ("", false) if unseen. Caller must
// hold o.mu.
func (o *Object) canonicalKeyLocked(version uint8, name string) (string, bool) {
	if version <= 6 {
		key, ok := o.fold[strings.ToLower(name)]
		return key, ok
	}
	if _, ok := o.slots[name]; ok {
		return name, true
	}
	return "", false
}

// DefineOwn creates or overwrites an own data property, preserving the
// original definition's case and insertion slot on redefinition.
func (o *Object) DefineOwn(version uint8, name string, v value.Value, flags PropertyFlags) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.defineOwnLocked(version, name, v, flags)
}

func (o *Object) defineOwnLocked(version uint8, name string, v value.Value, flags PropertyFlags) {
	if key, ok := o.canonicalKeyLocked(version, name); ok {
		slot := o.slots[key]
		slot.value = v
		slot.isAccessor = false
		slot.getter, slot.setter = nil, nil
		slot.flags = flags
		return
	}
	o.slots[name] = &propertySlot{value: v, flags: flags}
	o.keys = append(o.keys, name)
	o.fold[strings.ToLower(name)] = name
}

// DefineAccessor installs a getter/setter pair as a single accessor
// property. Either getter or setter may be nil.
func (o *Object) DefineAccessor(version uint8, name string, getter, setter *value.Value, flags PropertyFlags) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if key, ok := o.canonicalKeyLocked(version, name); ok {
		slot := o.slots[key]
		slot.isAccessor = true
		slot.getter, slot.setter = getter, setter
		slot.flags = flags
		return
	}
	o.slots[name] = &propertySlot{isAccessor: true, getter: getter, setter: setter, flags: flags}
	o.keys = append(o.keys, name)
	o.fold[strings.ToLower(name)] = name
}

// HasOwnProperty reports whether name names an own property (not walking
// the prototype chain).
func (o *Object) HasOwnProperty(version uint8, name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.canonicalKeyLocked(version, name)
	return ok
}

// DeleteOwn removes an own property unless it is flagged dontDelete.
// Reports whether the property existed and was deletable.
func (o *Object) DeleteOwn(version uint8, name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	key, ok := o.canonicalKeyLocked(version, name)
	if !ok {
		return false
	}
	if o.slots[key].flags.DontDelete {
		return false
	}
	delete(o.slots, key)
	delete(o.fold, strings.ToLower(key))
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// getOwnLocked returns the own slot for name, or nil.
func (o *Object) getOwnLocked(version uint8, name string) *propertySlot {
	key, ok := o.canonicalKeyLocked(version, name)
	if !ok {
		return nil
	}
	return o.slots[key]
}

// Get performs a full prototype-chain read. If a setter-only accessor is
// found without a getter, Undefined is returned (no error: VM1 never
// raises errors for this).
func (o *Object) Get(version uint8, name string, receiver *Object, invoke FunctionInvoker) value.Value {
	cur := o
	for cur != nil {
		cur.mu.Lock()
		slot := cur.getOwnLocked(version, name)
		cur.mu.Unlock()
		if slot != nil {
			if slot.isAccessor {
				if slot.getter == nil || invoke == nil {
					return value.Undefined()
				}
				return invoke(*slot.getter, receiver, nil)
			}
			return slot.value
		}
		cur = cur.Prototype()
	}
	return value.Undefined()
}

// FunctionInvoker lets Object.Get/Set call a getter/setter function object
// without the avm1 package needing a call-stack dependency cycle; the
// driver supplies the real implementation.
type FunctionInvoker func(fn value.Value, this *Object, args []value.Value) value.Value

// Set writes name=value. If a setter exists anywhere up the prototype
// chain, it fires with the original receiver (this object); otherwise the
// value lands in this object's own map (never the prototype's).
func (o *Object) Set(version uint8, name string, v value.Value, invoke FunctionInvoker) {
	cur := o
	for cur != nil {
		cur.mu.Lock()
		slot := cur.getOwnLocked(version, name)
		cur.mu.Unlock()
		if slot != nil {
			if slot.isAccessor {
				if slot.setter != nil && invoke != nil {
					invoke(*slot.setter, o, []value.Value{v})
				}
				return
			}
			if cur == o {
				if slot.flags.ReadOnly {
					return
				}
				cur.mu.Lock()
				slot.value = v
				cur.mu.Unlock()
				return
			}
			break
		}
		cur = cur.Prototype()
	}
	o.DefineOwn(version, name, v, PropertyFlags{})
}

// Enumerate returns own, non-dontEnum property names in insertion order;
// prototype properties are never included.
func (o *Object) Enumerate() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if slot := o.slots[k]; slot != nil && !slot.flags.DontEnum {
			out = append(out, k)
		}
	}
	return out
}

// GCTrace visits the prototype link, every stored value (data or accessor
// function objects), the captured scope of a function backing variant, if
// any, and native bindings that themselves participate in tracing.
func (o *Object) GCTrace(v *gcarena.Visitor) {
	o.mu.Lock()
	proto := o.proto
	fn := o.function
	native := o.native
	slots := make([]*propertySlot, 0, len(o.slots))
	for _, s := range o.slots {
		slots = append(slots, s)
	}
	o.mu.Unlock()

	if proto != nil {
		v.Visit(proto)
	}
	for _, s := range slots {
		s.value.GCTrace(v)
		if s.getter != nil {
			s.getter.GCTrace(v)
		}
		if s.setter != nil {
			s.setter.GCTrace(v)
		}
	}
	if fn != nil && fn.CapturedScope != nil {
		v.Visit(fn.CapturedScope)
	}
	if tr, ok := native.(gcarena.Traceable); ok {
		v.Visit(tr)
	}
}
