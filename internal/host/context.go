// Package host implements the ActionContext collaborator: the
// mutable, per-call struct of host references both VMs consume instead of a
// global. It owns nothing the scripting core needs to reason about
// semantically -- display list, audio, rendering, and navigation are all
// external collaborators reached only through narrow interfaces.
package host

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/value"
)

// Color is a 32-bit RGBA background-color cell.
type Color struct {
	R, G, B, A byte
}

// Library is a minimal stand-in for the SWF symbol library (exported
// symbols keyed by name); real symbol resolution belongs to the SWF
// decoding/display-list subsystem, out of scope here.
type Library struct {
	symbols map[string]interface{}
}

// NewLibrary constructs an empty library.
func NewLibrary() *Library { return &Library{symbols: make(map[string]interface{})} }

// Lookup returns the symbol registered under name, if any.
func (l *Library) Lookup(name string) (interface{}, bool) {
	v, ok := l.symbols[name]
	return v, ok
}

// Register associates name with a symbol (e.g. a MovieClip template).
func (l *Library) Register(name string, symbol interface{}) {
	l.symbols[name] = symbol
}

// Context is the ActionContext passed to both VMs on every call.
type Context struct {
	// ID correlates this context's diagnostics across log lines; it has no
	// script-visible meaning.
	ID uuid.UUID

	GC *gcarena.Arena

	GlobalClock   uint64
	PlayerVersion uint8

	Root       DisplayObject
	StartClip  DisplayObject
	ActiveClip DisplayObject
	TargetClip DisplayObject // clip target-relative lookups address; NewTestContext sets it to the root clip

	TargetPath value.Value

	RNG *rand.Rand

	Audio     AudioBackend
	Navigator NavigatorBackend
	Renderer  RenderBackend

	Queue *ActionQueue

	BackgroundColor Color

	Library *Library

	// SWFData is the shared backing buffer for the whole movie; the VMs
	// never copy out of it, only alias sub-ranges (see avm1.Bytecode).
	SWFData *[]byte

	// Storage is the persistent key/value collaborator. It is typed as
	// host's own StorageBackend interface (not storage.Backend) purely to
	// avoid importing the storage package from host, which would otherwise
	// be a harmless but needless coupling; any storage.Backend satisfies
	// it, and cmd/flashvm assigns its configured backend here.
	Storage StorageBackend
}

// StorageBackend mirrors the persistent storage contract.
type StorageBackend interface {
	Get(name string) (string, bool)
	Put(name string, value string) bool
	Remove(name string)
}

// NewTestContext builds an ActionContext suitable for unit tests and
// bootstrapping, the same role test_utils.rs's with_avm plays in the
// reference runtime: Null backends, a deterministic RNG, a stub root clip.
func NewTestContext(playerVersion uint8) *Context {
	arena := gcarena.New()
	root := NewStubClip("_root")
	return &Context{
		ID:            uuid.New(),
		GC:            arena,
		GlobalClock:   0,
		PlayerVersion: playerVersion,
		Root:          root,
		StartClip:     root,
		ActiveClip:    root,
		TargetClip:    root,
		TargetPath:    value.Undefined(),
		RNG:           rand.New(rand.NewSource(0)),
		Audio:         NewNullAudioBackend(),
		Navigator:     NewNullNavigatorBackend(),
		Renderer:      NewNullRenderer(),
		Queue:         NewActionQueue(),
		Library:       NewLibrary(),
		SWFData:       &[]byte{},
	}
}
