package avm2

// Bytecode is VM2's counterpart to avm1.Bytecode: a slice over a shared
// backing buffer so nested calls never copy bytes, and identity ("same
// function") is equality of the backing handle created by one NewBytecode
// call, not content equality.
// Kept as its own type rather than importing avm1's so the two VMs remain
// independently buildable collaborators sharing only a byte-slice contract
// (§6), not a Go package dependency.
type Bytecode struct {
	backing *[]byte
	start   int
	end     int
}

func NewBytecode(buf []byte) Bytecode {
	b := buf
	return Bytecode{backing: &b, start: 0, end: len(b)}
}

func EmptyBytecode() Bytecode { return NewBytecode(nil) }

func (b Bytecode) Bytes() []byte {
	if b.backing == nil {
		return nil
	}
	return (*b.backing)[b.start:b.end]
}

func (b Bytecode) Len() int { return b.end - b.start }

func (b Bytecode) Sub(start, end int) Bytecode {
	return Bytecode{backing: b.backing, start: b.start + start, end: b.start + end}
}

func (b Bytecode) SameBacking(o Bytecode) bool {
	return b.backing == o.backing
}
