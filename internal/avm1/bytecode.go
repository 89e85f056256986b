package avm1

// Bytecode is a slice over a shared backing buffer, mirroring SwfSlice in
// the reference runtime: sub-slices taken for nested calls never copy the
// underlying bytes, and two Bytecode values are "the same function" iff
// they share the backing handle created by one NewBytecode call (Sub keeps
// it; wrapping the same []byte twice with NewBytecode yields two distinct
// handles).
type Bytecode struct {
	backing *[]byte
	start   int
	end     int
}

// NewBytecode wraps buf as a fresh backing buffer spanning its full length.
func NewBytecode(buf []byte) Bytecode {
	b := buf
	return Bytecode{backing: &b, start: 0, end: len(b)}
}

// Empty returns a zero-length Bytecode with its own (never aliased) backing
// buffer, used for synthetic/bootstrapping activations (from_nothing).
func Empty() Bytecode {
	return NewBytecode(nil)
}

// Bytes returns the byte range this value addresses.
func (b Bytecode) Bytes() []byte {
	if b.backing == nil {
		return nil
	}
	return (*b.backing)[b.start:b.end]
}

// Len reports the number of addressable bytes.
func (b Bytecode) Len() int { return b.end - b.start }

// Sub carves out [start, end) relative to the current slice, aliasing the
// same backing buffer -- used when jumping into an embedded block (e.g. a
// `with` body) without duplicating bytes.
func (b Bytecode) Sub(start, end int) Bytecode {
	return Bytecode{backing: b.backing, start: b.start + start, end: b.start + end}
}

// SameBacking reports whether b and o alias the same backing buffer,
// independent of their start/end offsets. This is the primitive behind
// is_identical_fn: recursion into the same function body shares backing
// storage even though PC and sub-range may differ.
func (b Bytecode) SameBacking(o Bytecode) bool {
	return b.backing == o.backing
}
