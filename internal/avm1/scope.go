package avm1

import (
	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/value"
)

// ScopeKind tags the four node kinds the chain can contain.
type ScopeKind byte

const (
	ScopeGlobal ScopeKind = iota
	ScopeLocal
	ScopeWith
	ScopeTarget
)

// Scope is a lexical+dynamic scope chain node. The chain is finite and
// rooted at exactly one Global node. Local scopes own a fresh empty binding
// object; With (and Target) scopes inject an existing object into lookup
// without owning it.
type Scope struct {
	parent  *Scope
	kind    ScopeKind
	binding *Object
}

// FromGlobal roots a scope chain at the global object.
func FromGlobal(globals *Object) *Scope {
	return &Scope{kind: ScopeGlobal, binding: globals}
}

// NewLocalChild introduces a fresh empty binding object; variable
// definitions land here.
func NewLocalChild(parent *Scope) *Scope {
	return &Scope{parent: parent, kind: ScopeLocal, binding: NewObject()}
}

// NewWithChild injects obj into lookup only; obj is not owned by the scope
// and is not mutated by Define.
func NewWithChild(parent *Scope, obj *Object) *Scope {
	return &Scope{parent: parent, kind: ScopeWith, binding: obj}
}

// NewTargetChild injects a tellTarget display-object binding, distinct from
// With only in kind (so diagnostics/host code can tell the two apart).
func NewTargetChild(parent *Scope, obj *Object) *Scope {
	return &Scope{parent: parent, kind: ScopeTarget, binding: obj}
}

// Parent returns the enclosing scope, or nil at the global root.
func (s *Scope) Parent() *Scope { return s.parent }

// Kind reports this node's kind.
func (s *Scope) Kind() ScopeKind { return s.kind }

// Binding returns the object this node searches/writes.
func (s *Scope) Binding() *Object { return s.binding }

// Resolve searches the chain innermost-first; the first binding found wins.
// With no binding anywhere, Undefined is returned (never an error).
func (s *Scope) Resolve(version uint8, name string) value.Value {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.binding.HasOwnProperty(version, name) {
			return cur.binding.Get(version, name, cur.binding, nil)
		}
	}
	return value.Undefined()
}

// IsDefined mirrors Resolve without materializing a value.
func (s *Scope) IsDefined(version uint8, name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.binding.HasOwnProperty(version, name) {
			return true
		}
	}
	return false
}

// Define writes to the nearest enclosing Local scope's binding object; if
// none exists, it writes to Global.
func (s *Scope) Define(version uint8, name string, v value.Value) {
	var global *Object
	for cur := s; cur != nil; cur = cur.parent {
		if cur.kind == ScopeGlobal {
			global = cur.binding
		}
		if cur.kind == ScopeLocal {
			cur.binding.DefineOwn(version, name, v, PropertyFlags{})
			return
		}
	}
	if global != nil {
		global.DefineOwn(version, name, v, PropertyFlags{})
	}
}

// Set assigns to an existing binding in the chain if found; otherwise it
// defines the name on the Global object (implicit global).
func (s *Scope) Set(version uint8, name string, v value.Value) {
	var global *Object
	for cur := s; cur != nil; cur = cur.parent {
		if cur.kind == ScopeGlobal {
			global = cur.binding
		}
		if cur.binding.HasOwnProperty(version, name) {
			cur.binding.Set(version, name, v, nil)
			return
		}
	}
	if global != nil {
		global.DefineOwn(version, name, v, PropertyFlags{})
	}
}

// GCTrace visits the parent node and the bound object.
func (s *Scope) GCTrace(v *gcarena.Visitor) {
	if s.parent != nil {
		v.Visit(s.parent)
	}
	if s.binding != nil {
		v.Visit(s.binding)
	}
}
