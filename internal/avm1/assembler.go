package avm1

import (
	"encoding/binary"
	"math"
)

// Assembler builds a Bytecode buffer instruction by instruction. It exists
// for tests and bootstrapping (SWF action-tag decoding itself is out of
// scope), the same role a disassembler/test fixture plays
// alongside test_utils.rs in the reference runtime.
type Assembler struct {
	buf []byte
}

// NewAssembler starts an empty instruction stream.
func NewAssembler() *Assembler { return &Assembler{} }

func (a *Assembler) emitShort(op Opcode) *Assembler {
	a.buf = append(a.buf, byte(op))
	return a
}

func (a *Assembler) emitLong(op Opcode, operand []byte) *Assembler {
	a.buf = append(a.buf, byte(op))
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(operand)))
	a.buf = append(a.buf, lenBuf[:]...)
	a.buf = append(a.buf, operand...)
	return a
}

// Bytecode finalizes the stream into a shared-buffer Bytecode value.
func (a *Assembler) Bytecode() Bytecode { return NewBytecode(a.buf) }

// Len reports the current stream length, useful for computing jump/with
// block offsets before they are known.
func (a *Assembler) Len() int { return len(a.buf) }

func (a *Assembler) Pop() *Assembler            { return a.emitShort(OpPop) }
func (a *Assembler) Add() *Assembler            { return a.emitShort(OpAdd) }
func (a *Assembler) Subtract() *Assembler       { return a.emitShort(OpSubtract) }
func (a *Assembler) Multiply() *Assembler       { return a.emitShort(OpMultiply) }
func (a *Assembler) Divide() *Assembler         { return a.emitShort(OpDivide) }
func (a *Assembler) Modulo() *Assembler         { return a.emitShort(OpModulo) }
func (a *Assembler) Not() *Assembler            { return a.emitShort(OpNot) }
func (a *Assembler) And() *Assembler            { return a.emitShort(OpAnd) }
func (a *Assembler) Or() *Assembler             { return a.emitShort(OpOr) }
func (a *Assembler) ToInteger() *Assembler      { return a.emitShort(OpToInteger) }
func (a *Assembler) ToNumber() *Assembler       { return a.emitShort(OpToNumber) }
func (a *Assembler) ToStringOp() *Assembler     { return a.emitShort(OpToString) }
func (a *Assembler) TypeOf() *Assembler         { return a.emitShort(OpTypeOf) }
func (a *Assembler) Less() *Assembler           { return a.emitShort(OpLess) }
func (a *Assembler) Greater() *Assembler        { return a.emitShort(OpGreater) }
func (a *Assembler) Less2() *Assembler          { return a.emitShort(OpLess2) }
func (a *Assembler) Greater2() *Assembler       { return a.emitShort(OpGreater2) }
func (a *Assembler) Equals() *Assembler         { return a.emitShort(OpEquals) }
func (a *Assembler) Equals2() *Assembler        { return a.emitShort(OpEquals2) }
func (a *Assembler) StrictEquals() *Assembler   { return a.emitShort(OpStrictEquals) }
func (a *Assembler) GetVariable() *Assembler    { return a.emitShort(OpGetVariable) }
func (a *Assembler) SetVariable() *Assembler    { return a.emitShort(OpSetVariable) }
func (a *Assembler) DefineLocal() *Assembler    { return a.emitShort(OpDefineLocal) }
func (a *Assembler) DefineLocal2() *Assembler   { return a.emitShort(OpDefineLocal2) }
func (a *Assembler) GetMember() *Assembler      { return a.emitShort(OpGetMember) }
func (a *Assembler) SetMember() *Assembler      { return a.emitShort(OpSetMember) }
func (a *Assembler) Delete() *Assembler         { return a.emitShort(OpDelete) }
func (a *Assembler) InitObject() *Assembler     { return a.emitShort(OpInitObject) }
func (a *Assembler) InitArray() *Assembler      { return a.emitShort(OpInitArray) }
func (a *Assembler) Enumerate() *Assembler      { return a.emitShort(OpEnumerate) }
func (a *Assembler) CallFunction() *Assembler   { return a.emitShort(OpCallFunction) }
func (a *Assembler) CallMethod() *Assembler     { return a.emitShort(OpCallMethod) }
func (a *Assembler) Return() *Assembler         { return a.emitShort(OpReturn) }
func (a *Assembler) Trace() *Assembler          { return a.emitShort(OpTrace) }
func (a *Assembler) NewObject() *Assembler      { return a.emitShort(OpNewObject) }

func (a *Assembler) PushUndefined() *Assembler {
	return a.emitLong(OpPush, []byte{byte(PushUndefined)})
}

func (a *Assembler) PushNull() *Assembler {
	return a.emitLong(OpPush, []byte{byte(PushNull)})
}

func (a *Assembler) PushBool(b bool) *Assembler {
	v := byte(0)
	if b {
		v = 1
	}
	return a.emitLong(OpPush, []byte{byte(PushBool), v})
}

func (a *Assembler) PushInteger(i int32) *Assembler {
	buf := make([]byte, 5)
	buf[0] = byte(PushInteger)
	binary.LittleEndian.PutUint32(buf[1:], uint32(i))
	return a.emitLong(OpPush, buf)
}

func (a *Assembler) PushNumber(n float64) *Assembler {
	buf := make([]byte, 9)
	buf[0] = byte(PushNumber)
	binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(n))
	return a.emitLong(OpPush, buf)
}

func (a *Assembler) PushString(s string) *Assembler {
	buf := make([]byte, 0, 3+len(s))
	buf = append(buf, byte(PushString))
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(s)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, s...)
	return a.emitLong(OpPush, buf)
}

func (a *Assembler) PushRegister(reg uint8) *Assembler {
	return a.emitLong(OpPush, []byte{byte(PushRegister), reg})
}

func (a *Assembler) StoreRegister(reg uint8) *Assembler {
	return a.emitLong(OpStoreRegister, []byte{reg})
}

// Jump emits an unconditional relative jump. offset is measured from the
// first byte after this instruction, matching real SWF ActionJump.
func (a *Assembler) Jump(offset int16) *Assembler {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(offset))
	return a.emitLong(OpJump, buf[:])
}

// If emits a conditional relative jump (pops and tests the stack top).
func (a *Assembler) If(offset int16) *Assembler {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(offset))
	return a.emitLong(OpIf, buf[:])
}

// With reserves a block of size bytes immediately following this
// instruction to be re-scoped against the popped stack-top object; callers
// write the block body right after calling With.
func (a *Assembler) With(size uint16) *Assembler {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], size)
	return a.emitLong(OpWith, buf[:])
}
