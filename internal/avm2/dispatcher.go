package avm2

import (
	"sort"
	"sync"

	"github.com/flashruntime/corevm/internal/diag"
	"github.com/flashruntime/corevm/internal/gcarena"
)

// listenerEntry is one (listener, use_capture, priority) registration. seq
// is assigned at insertion time and breaks priority ties, giving the
// stable "equal priority keeps insertion order" guarantee.
type listenerEntry struct {
	listener   *Object
	useCapture bool
	priority   int32
	seq        int
}

// DispatchList is the per-object, per-event-type listener registry backing
// `flash.events.EventDispatcher` (§4.6, §3 DispatchList). One list instance
// covers every event type the object has ever registered a listener for.
type DispatchList struct {
	mu      sync.Mutex
	byType  map[string][]listenerEntry
	nextSeq int
}

func NewDispatchList() *DispatchList {
	return &DispatchList{byType: make(map[string][]listenerEntry)}
}

// AddEventListener inserts listener for eventType, or -- if the exact
// (eventType, listener, useCapture) triple is already registered --
// removes the old registration and re-inserts at the new priority. Either
// way the result satisfies the strictly-descending-priority, stable-tie
// invariant.
func (d *DispatchList) AddEventListener(eventType string, priority int32, listener *Object, useCapture bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.byType[eventType]
	filtered := entries[:0:0]
	for _, e := range entries {
		if e.listener == listener && e.useCapture == useCapture {
			continue
		}
		filtered = append(filtered, e)
	}

	seq := d.nextSeq
	d.nextSeq++
	filtered = append(filtered, listenerEntry{listener: listener, useCapture: useCapture, priority: priority, seq: seq})

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].priority != filtered[j].priority {
			return filtered[i].priority > filtered[j].priority
		}
		return filtered[i].seq < filtered[j].seq
	})
	d.byType[eventType] = filtered
}

// RemoveEventListener deletes the matching triple; absence is not an error
// (§4.6).
func (d *DispatchList) RemoveEventListener(eventType string, listener *Object, useCapture bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.byType[eventType]
	out := entries[:0:0]
	for _, e := range entries {
		if e.listener == listener && e.useCapture == useCapture {
			continue
		}
		out = append(out, e)
	}
	d.byType[eventType] = out
}

// HasEventListener reports whether any registration (capture or not) exists
// for eventType.
func (d *DispatchList) HasEventListener(eventType string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byType[eventType]) > 0
}

func (d *DispatchList) entriesForPhase(eventType string, wantCapture, allowBoth bool) []listenerEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	src := d.byType[eventType]
	out := make([]listenerEntry, 0, len(src))
	for _, e := range src {
		if allowBoth || e.useCapture == wantCapture {
			out = append(out, e)
		}
	}
	return out
}

func (d *DispatchList) GCTrace(vis *gcarena.Visitor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, entries := range d.byType {
		for _, e := range entries {
			vis.Visit(e.listener)
		}
	}
}

var _ gcarena.Traceable = (*DispatchList)(nil)

// Event is the payload passed through a Dispatch call. Bubbles mirrors
// flash.events.Event's own `bubbles` flag: the bubble phase is skipped
// entirely when false.
type Event struct {
	Type    string
	Bubbles bool

	stoppedPropagation bool
	stoppedImmediate   bool
}

// StopPropagation halts delivery after the current node's remaining
// listeners finish running.
func (e *Event) StopPropagation() { e.stoppedPropagation = true }

// StopImmediatePropagation halts delivery immediately, aborting even the
// rest of the current node's listener list.
func (e *Event) StopImmediatePropagation() {
	e.stoppedImmediate = true
	e.stoppedPropagation = true
}

// Dispatch runs the full capture -> at-target -> bubble phase machine.
// ancestors is ordered root-first, target-parent
// last (the target itself is not included). ListenerInvoke is supplied by
// the driver so this package doesn't need to know how to call a Method.
type ListenerInvoke func(listener *Object, evt *Event) error

func Dispatch(ancestors []*Object, target *Object, evt *Event, invoke ListenerInvoke, trace diag.Sink) {
	runPhase := func(node *Object, wantCapture, allowBoth bool) bool {
		if node == nil {
			return true
		}
		for _, e := range node.Dispatch().entriesForPhase(evt.Type, wantCapture, allowBoth) {
			if err := invoke(e.listener, evt); err != nil && trace != nil {
				trace.TraceLine("avm2 dispatch listener error: " + err.Error())
			}
			if evt.stoppedImmediate {
				return false
			}
		}
		return !evt.stoppedPropagation
	}

	// Capture: root -> target-parent, capture-flagged listeners only.
	for _, anc := range ancestors {
		if !runPhase(anc, true, false) {
			return
		}
	}

	// At-target: both capture and non-capture listeners on the target.
	if !runPhase(target, false, true) {
		return
	}

	if !evt.Bubbles {
		return
	}

	// Bubble: target-parent -> root, non-capture listeners only.
	for i := len(ancestors) - 1; i >= 0; i-- {
		if !runPhase(ancestors[i], false, false) {
			return
		}
	}
}
