package avm2

import "fmt"

// Class is a class descriptor: name, optional superclass link, implemented
// interfaces, and two independent trait tables (instance members vs static
// class members). SuperClass is resolved by the caller (typically a class
// registry) after both classes exist; Super alone is enough to describe the
// class before linking.
type Class struct {
	Name       QName
	Super      *QName
	SuperClass *Class
	Interfaces []QName

	InstanceInit *Method
	ClassInit    *Method

	instanceTraits []Trait
	instanceIndex  map[QName]int
	classTraits    []Trait
	classIndex     map[QName]int
}

// NewClass constructs a bare class descriptor. super is nil for a root class
// (only Object itself has no superclass in practice).
func NewClass(name QName, super *QName, instanceInit, classInit *Method) *Class {
	return &Class{
		Name:          name,
		Super:         super,
		InstanceInit:  instanceInit,
		ClassInit:     classInit,
		instanceIndex: make(map[QName]int),
		classIndex:    make(map[QName]int),
	}
}

// Implements records an interface this class claims to satisfy. Interfaces
// contribute type identity only; they never carry method bodies (§4.7).
func (c *Class) Implements(iface QName) {
	c.Interfaces = append(c.Interfaces, iface)
}

// DefineInstanceTrait adds a member to the instance trait table. Returns an
// error if a trait with the same QName is already declared on this class
// (duplicate names within one class are a construction error; shadowing a
// superclass trait is allowed and is not a duplicate).
func (c *Class) DefineInstanceTrait(t Trait) error {
	if _, exists := c.instanceIndex[t.Name]; exists {
		return fmt.Errorf("avm2: duplicate instance trait %s on class %s", t.Name, c.Name)
	}
	c.instanceIndex[t.Name] = len(c.instanceTraits)
	c.instanceTraits = append(c.instanceTraits, t)
	return nil
}

// DefineClassTrait adds a static member to the class trait table, under the
// same duplicate-name rule as DefineInstanceTrait.
func (c *Class) DefineClassTrait(t Trait) error {
	if _, exists := c.classIndex[t.Name]; exists {
		return fmt.Errorf("avm2: duplicate class trait %s on class %s", t.Name, c.Name)
	}
	c.classIndex[t.Name] = len(c.classTraits)
	c.classTraits = append(c.classTraits, t)
	return nil
}

// OwnInstanceTrait looks up a trait declared directly on this class, without
// walking the super chain.
func (c *Class) OwnInstanceTrait(name QName) (Trait, bool) {
	idx, ok := c.instanceIndex[name]
	if !ok {
		return Trait{}, false
	}
	return c.instanceTraits[idx], true
}

func (c *Class) OwnClassTrait(name QName) (Trait, bool) {
	idx, ok := c.classIndex[name]
	if !ok {
		return Trait{}, false
	}
	return c.classTraits[idx], true
}

// ResolveInstanceTrait walks the inheritance chain depth-first starting at
// this class (self first, then super, then super's super, ...), returning
// the first matching trait. This is the method-resolution-order §4.7 names.
func (c *Class) ResolveInstanceTrait(name QName) (Trait, *Class, bool) {
	for cur := c; cur != nil; cur = cur.SuperClass {
		if t, ok := cur.OwnInstanceTrait(name); ok {
			return t, cur, true
		}
	}
	return Trait{}, nil, false
}

func (c *Class) ResolveClassTrait(name QName) (Trait, *Class, bool) {
	for cur := c; cur != nil; cur = cur.SuperClass {
		if t, ok := cur.OwnClassTrait(name); ok {
			return t, cur, true
		}
	}
	return Trait{}, nil, false
}

// AllInstanceTraits returns every trait in this class's own table, in
// declaration order. It does not include inherited traits.
func (c *Class) AllInstanceTraits() []Trait {
	out := make([]Trait, len(c.instanceTraits))
	copy(out, c.instanceTraits)
	return out
}

// IsOrInherits reports whether c is target or inherits from it, walking the
// super chain.
func (c *Class) IsOrInherits(target *Class) bool {
	for cur := c; cur != nil; cur = cur.SuperClass {
		if cur == target {
			return true
		}
	}
	for _, iface := range c.Interfaces {
		if iface.Equal(target.Name) {
			return true
		}
	}
	return false
}

// Registry resolves QName -> *Class so Super links can be wired up lazily:
// create_class returns a class before its superclass is necessarily
// registered, mirroring the reference runtime's GcCell<Class> construction
// order (the class object exists before domain-wide linking completes).
type Registry struct {
	classes map[QName]*Class
}

func NewRegistry() *Registry {
	return &Registry{classes: make(map[QName]*Class)}
}

// CreateClass registers a class under its own name and, if its super class
// is already registered, links SuperClass immediately. Re-linking (for a
// super class registered later) is the caller's job via Link.
func (r *Registry) CreateClass(c *Class) {
	r.classes[c.Name] = c
	if c.Super != nil {
		if super, ok := r.classes[*c.Super]; ok {
			c.SuperClass = super
		}
	}
}

// Link resolves every class's Super QName against the registry, for classes
// registered before their superclass existed.
func (r *Registry) Link() {
	for _, c := range r.classes {
		if c.Super != nil && c.SuperClass == nil {
			c.SuperClass = r.classes[*c.Super]
		}
	}
}

func (r *Registry) Lookup(name QName) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}
