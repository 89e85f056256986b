package avm2

import (
	"sync"

	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/value"
)

// RegisterSet is VM2's register file: zero-indexed (register 0 conventionally
// holds `this` on a scripted method), fixed capacity, shared by pointer so a
// rescope observes the same file rather than a copy (§4.1).
type RegisterSet struct {
	mu   sync.Mutex
	regs []value.Value
}

func NewRegisterSet(n int) *RegisterSet {
	regs := make([]value.Value, n)
	for i := range regs {
		regs[i] = value.Undefined()
	}
	return &RegisterSet{regs: regs}
}

func (r *RegisterSet) Get(i int) value.Value {
	if i < 0 {
		return value.Undefined()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= len(r.regs) {
		return value.Undefined()
	}
	return r.regs[i]
}

func (r *RegisterSet) Set(i int, v value.Value) {
	if i < 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= len(r.regs) {
		return
	}
	r.regs[i] = v
}

func (r *RegisterSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

func (r *RegisterSet) GCTrace(v *gcarena.Visitor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.regs {
		reg.GCTrace(v)
	}
}
