package avm2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReAddRemoveLeavesNoTriple(t *testing.T) {
	dl := NewDispatchList()
	listener := NewObject(nil, false)

	dl.AddEventListener("click", 0, listener, false)
	dl.AddEventListener("click", 0, listener, false)
	dl.RemoveEventListener("click", listener, false)

	assert.False(t, dl.HasEventListener("click"))
}

func TestReAddAtDifferentPriorityRelocates(t *testing.T) {
	dl := NewDispatchList()
	a := NewObject(nil, false)
	b := NewObject(nil, false)

	dl.AddEventListener("evt", 0, a, false)
	dl.AddEventListener("evt", 0, b, false)
	// a re-added at higher priority should now sort before b.
	dl.AddEventListener("evt", 10, a, false)

	entries := dl.entriesForPhase("evt", false, true)
	if assert.Len(t, entries, 2) {
		assert.Same(t, a, entries[0].listener)
		assert.Same(t, b, entries[1].listener)
	}
}

func TestPriorityOrderingTiesKeepInsertionOrder(t *testing.T) {
	dl := NewDispatchList()
	first := NewObject(nil, false)
	second := NewObject(nil, false)
	third := NewObject(nil, false)

	dl.AddEventListener("evt", 5, first, false)
	dl.AddEventListener("evt", 9, second, false)
	dl.AddEventListener("evt", 5, third, false)

	entries := dl.entriesForPhase("evt", false, true)
	wantOrder := []*Object{second, first, third}
	for i, want := range wantOrder {
		assert.Same(t, want, entries[i].listener)
	}
}
