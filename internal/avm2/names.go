package avm2

// NamespaceKind tags the visibility domain a Namespace belongs to. Two
// namespaces are equal iff both the kind and, where applicable, the payload
// match, so a Package("flash.events") namespace never collides with a
// Private("flash.events") one even though the text is identical.
type NamespaceKind uint8

const (
	NamespacePublic NamespaceKind = iota
	NamespacePackage
	NamespaceInternal
	NamespaceProtected
	NamespaceExplicit
	NamespaceStaticProtected
	NamespacePrivate
	NamespaceRuntimePrivate
)

// Namespace is the namespace half of a qualified name. Package, Internal,
// Protected, Private and RuntimePrivate carry a payload (package path or
// owner qualifier); the rest are singleton kinds.
type Namespace struct {
	Kind    NamespaceKind
	Payload string
}

func PublicNamespace() Namespace              { return Namespace{Kind: NamespacePublic} }
func PackageNamespace(name string) Namespace   { return Namespace{Kind: NamespacePackage, Payload: name} }
func InternalNamespace(name string) Namespace  { return Namespace{Kind: NamespaceInternal, Payload: name} }
func ProtectedNamespace(name string) Namespace { return Namespace{Kind: NamespaceProtected, Payload: name} }
func ExplicitNamespace() Namespace             { return Namespace{Kind: NamespaceExplicit} }
func StaticProtectedNamespace() Namespace      { return Namespace{Kind: NamespaceStaticProtected} }
func PrivateNamespace(name string) Namespace   { return Namespace{Kind: NamespacePrivate, Payload: name} }

// RuffleNamespace names the "ruffle-private" namespace used by host-defined
// classes (EventDispatcher's target/dispatch_list slots) to park fields a
// script can never name directly, regardless of its own namespace set.
func RuffleNamespace(owner string) Namespace {
	return Namespace{Kind: NamespaceRuntimePrivate, Payload: owner}
}

// Equal compares kind and payload componentwise; singleton kinds ignore
// Payload.
func (n Namespace) Equal(other Namespace) bool {
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case NamespacePackage, NamespaceInternal, NamespaceProtected, NamespacePrivate, NamespaceRuntimePrivate:
		return n.Payload == other.Payload
	default:
		return true
	}
}

func (n Namespace) String() string {
	switch n.Kind {
	case NamespacePublic:
		return ""
	case NamespacePackage:
		return n.Payload
	case NamespaceInternal:
		return "internal:" + n.Payload
	case NamespaceProtected:
		return "protected:" + n.Payload
	case NamespaceExplicit:
		return "explicit"
	case NamespaceStaticProtected:
		return "static-protected"
	case NamespacePrivate:
		return "private:" + n.Payload
	case NamespaceRuntimePrivate:
		return "ruffle-private:" + n.Payload
	default:
		return "unknown-namespace"
	}
}

// QName is a namespace-qualified identifier: the unit traits, slots, and
// property lookups are keyed by. Equality is componentwise (namespace, then
// local name) so the same spelling in two namespaces names two different
// slots.
type QName struct {
	NS   Namespace
	Name string
}

func NewQName(ns Namespace, name string) QName { return QName{NS: ns, Name: name} }

func (q QName) Equal(other QName) bool {
	return q.NS.Equal(other.NS) && q.Name == other.Name
}

func (q QName) String() string {
	if q.NS.Kind == NamespacePublic {
		return q.Name
	}
	return q.NS.String() + "::" + q.Name
}

// PublicQName is shorthand for the common case of a public-namespace member.
func PublicQName(name string) QName { return NewQName(PublicNamespace(), name) }
