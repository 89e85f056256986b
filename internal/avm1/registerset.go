package avm1

import (
	"sync"

	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/value"
)

// RegisterSet is a small fixed-capacity array of Values. It is always
// referenced through a pointer so that a rescope sharing the handle (not a
// copy of the contents) observes the same register file. Registers are
// numbered 1..=N; index 0 is reserved and never stored.
type RegisterSet struct {
	mu   sync.Mutex
	regs []value.Value // regs[i] backs register i+1
}

// NewRegisterSet allocates n registers, all set to Undefined.
func NewRegisterSet(n uint8) *RegisterSet {
	regs := make([]value.Value, n)
	for i := range regs {
		regs[i] = value.Undefined()
	}
	return &RegisterSet{regs: regs}
}

// Get returns the value of register num, or Undefined if num is out of
// range.
func (r *RegisterSet) Get(num uint8) value.Value {
	if num < 1 {
		return value.Undefined()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := int(num) - 1
	if idx >= len(r.regs) {
		return value.Undefined()
	}
	return r.regs[idx]
}

// Set writes register num, silently doing nothing if num is out of range.
func (r *RegisterSet) Set(num uint8, v value.Value) {
	if num < 1 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := int(num) - 1
	if idx >= len(r.regs) {
		return
	}
	r.regs[idx] = v
}

// Len reports the allocated register count (N, not counting the reserved
// register 0).
func (r *RegisterSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// Clone produces an independent snapshot; sharing the pointer (as
// to_rescope does) yields aliased state instead.
func (r *RegisterSet) Clone() *RegisterSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]value.Value, len(r.regs))
	copy(out, r.regs)
	return &RegisterSet{regs: out}
}

// GCTrace visits every occupied register slot.
func (r *RegisterSet) GCTrace(v *gcarena.Visitor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.regs {
		reg.GCTrace(v)
	}
}
