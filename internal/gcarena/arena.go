// Package gcarena provides the tracing heap shared by both script VMs.
//
// The reference runtime (Ruffle, written in Rust) leans on the gc_arena
// crate: every managed cell is reached through a GcCell handle, and mutation
// requires a MutationContext token minted by the owning arena. Go already
// has a tracing, cycle-safe collector, so this package does not reimplement
// mark-and-sweep; it keeps the *shape* of that design (a Token gating
// mutation, an Arena owning GC roots, a Visitor walking the live graph) so
// that call sites look the way activation.rs's GcCell/MutationContext call
// sites do, and so that heap diagnostics (live object counts, root counts)
// stay available to the host without plumbing a second bookkeeping layer.
package gcarena

import "sync"

// Traceable is implemented by every heap-resident value that participates in
// tracing: scopes, objects, dispatch lists, activations, register sets.
type Traceable interface {
	// GCTrace visits every Traceable this value holds a strong reference to.
	GCTrace(v *Visitor)
}

// Visitor accumulates the set of reachable cells during a trace pass. It
// de-duplicates via pointer identity so cyclic graphs (scope -> object ->
// closure -> scope) terminate.
type Visitor struct {
	seen map[Traceable]struct{}
}

func newVisitor() *Visitor {
	return &Visitor{seen: make(map[Traceable]struct{}, 64)}
}

// Visit records t as reachable and recurses into it the first time it is
// seen. Safe to call with nil.
func (v *Visitor) Visit(t Traceable) {
	if t == nil {
		return
	}
	if _, ok := v.seen[t]; ok {
		return
	}
	v.seen[t] = struct{}{}
	t.GCTrace(v)
}

// Token authorizes mutation of a managed cell. It carries no capability of
// its own beyond proving the caller went through Arena.Mutate; it exists so
// that functions which mutate heap state can require one in their signature,
// the same way Ruffle's GcCell::write requires a MutationContext.
type Token struct {
	arena *Arena
}

// Arena owns the set of GC roots (activation stacks, globals) and the last
// trace's reachable-set size for diagnostics. It does not allocate or free
// memory itself; Go's runtime does that. It exists to make the
// single-mutator invariant explicit and to give the host a safepoint to hang
// heap diagnostics on between opcodes (safepoints coincide with
// opcode/call/queue boundaries).
type Arena struct {
	mu        sync.Mutex
	roots     []Traceable
	traces    uint64
	lastLive  int
}

// New constructs an empty arena.
func New() *Arena {
	return &Arena{roots: make([]Traceable, 0, 4)}
}

// AddRoot registers t as a GC root: it and everything reachable from it is
// always considered live. The activation stack and the global object are
// typical roots.
func (a *Arena) AddRoot(t Traceable) {
	if t == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.roots = append(a.roots, t)
}

// RemoveRoot drops t from the root set (e.g. a popped activation). Anything
// only reachable through t becomes reclaimable by Go's collector on the next
// trace.
func (a *Arena) RemoveRoot(t Traceable) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, r := range a.roots {
		if r == t {
			a.roots = append(a.roots[:i], a.roots[i+1:]...)
			return
		}
	}
}

// Mutate runs fn with a Token proving the arena authorized the mutation.
// It takes no lock: single-threaded cooperative scheduling means there is
// no other mutator to wait for. The arena's mutex only guards the root set
// and trace counters, so host-side diagnostics reads (LastLiveCount,
// RootCount) do not race AddRoot/RemoveRoot/Trace.
func (a *Arena) Mutate(fn func(Token)) {
	fn(Token{arena: a})
}

// Trace walks every root and returns the number of distinct live cells
// found. Call at an opcode boundary to refresh heap diagnostics; it
// never reclaims anything itself.
func (a *Arena) Trace() int {
	a.mu.Lock()
	roots := make([]Traceable, len(a.roots))
	copy(roots, a.roots)
	a.mu.Unlock()

	visitor := newVisitor()
	for _, r := range roots {
		visitor.Visit(r)
	}

	a.mu.Lock()
	a.traces++
	a.lastLive = len(visitor.seen)
	a.mu.Unlock()

	return len(visitor.seen)
}

// RootCount reports the number of registered GC roots.
func (a *Arena) RootCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.roots)
}

// LastLiveCount reports the live-cell count as of the most recent Trace.
func (a *Arena) LastLiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastLive
}
