package avm2

import (
	"encoding/binary"
	"math"
)

// Assembler builds a Bytecode buffer instruction by instruction, the VM2
// counterpart to avm1.Assembler -- SWF/ABC decoding is out of scope, so
// tests and bootstrapping hand-assemble fixtures this way instead.
type Assembler struct {
	buf []byte
}

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

func (a *Assembler) Bytecode() Bytecode { return NewBytecode(a.buf) }
func (a *Assembler) Len() int           { return len(a.buf) }

func (a *Assembler) Pop() *Assembler            { return a.emitShort(OpPop) }
func (a *Assembler) Dup() *Assembler            { return a.emitShort(OpDup) }
func (a *Assembler) PushUndefined() *Assembler  { return a.emitShort(OpPushUndefined) }
func (a *Assembler) PushNull() *Assembler       { return a.emitShort(OpPushNull) }
func (a *Assembler) PushTrue() *Assembler       { return a.emitShort(OpPushTrue) }
func (a *Assembler) PushFalse() *Assembler      { return a.emitShort(OpPushFalse) }
func (a *Assembler) ReturnValue() *Assembler    { return a.emitShort(OpReturnValue) }
func (a *Assembler) ReturnVoid() *Assembler     { return a.emitShort(OpReturnVoid) }
func (a *Assembler) Throw() *Assembler          { return a.emitShort(OpThrow) }
func (a *Assembler) Add() *Assembler            { return a.emitShort(OpAdd) }
func (a *Assembler) Subtract() *Assembler       { return a.emitShort(OpSubtract) }
func (a *Assembler) Multiply() *Assembler       { return a.emitShort(OpMultiply) }
func (a *Assembler) Equals() *Assembler         { return a.emitShort(OpEquals) }
func (a *Assembler) StrictEquals() *Assembler   { return a.emitShort(OpStrictEquals) }
func (a *Assembler) Not() *Assembler            { return a.emitShort(OpNot) }
func (a *Assembler) Trace() *Assembler          { return a.emitLong(OpTrace, nil) }

func (a *Assembler) PushByte(b int8) *Assembler {
	return a.emitLong(OpPushByte, []byte{byte(b)})
}

func (a *Assembler) PushInt(i int32) *Assembler {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(i))
	return a.emitLong(OpPushInt, buf)
}

func (a *Assembler) PushDouble(f float64) *Assembler {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
	return a.emitLong(OpPushDouble, buf)
}

func (a *Assembler) PushString(s string) *Assembler {
	buf := make([]byte, 2+len(s))
	binary.LittleEndian.PutUint16(buf[:2], uint16(len(s)))
	copy(buf[2:], s)
	return a.emitLong(OpPushString, buf)
}

func (a *Assembler) GetLocal(reg byte) *Assembler { return a.emitLong(OpGetLocal, []byte{reg}) }
func (a *Assembler) SetLocal(reg byte) *Assembler { return a.emitLong(OpSetLocal, []byte{reg}) }

func encodeQName(name QName) []byte {
	buf := []byte{byte(name.NS.Kind)}
	var plen [2]byte
	binary.LittleEndian.PutUint16(plen[:], uint16(len(name.NS.Payload)))
	buf = append(buf, plen[:]...)
	buf = append(buf, name.NS.Payload...)
	var nlen [2]byte
	binary.LittleEndian.PutUint16(nlen[:], uint16(len(name.Name)))
	buf = append(buf, nlen[:]...)
	buf = append(buf, name.Name...)
	return buf
}

func decodeQName(operand []byte) (QName, int, error) {
	if len(operand) < 3 {
		return QName{}, 0, NewScriptError(ErrInternalInvariant, "truncated qname: missing header")
	}
	kind := NamespaceKind(operand[0])
	plen := int(binary.LittleEndian.Uint16(operand[1:3]))
	off := 3
	if len(operand) < off+plen+2 {
		return QName{}, 0, NewScriptError(ErrInternalInvariant, "truncated qname: payload")
	}
	payload := string(operand[off : off+plen])
	off += plen
	nlen := int(binary.LittleEndian.Uint16(operand[off : off+2]))
	off += 2
	if len(operand) < off+nlen {
		return QName{}, 0, NewScriptError(ErrInternalInvariant, "truncated qname: name")
	}
	name := string(operand[off : off+nlen])
	off += nlen
	return QName{NS: Namespace{Kind: kind, Payload: payload}, Name: name}, off, nil
}

func (a *Assembler) GetProperty(name QName) *Assembler {
	return a.emitLong(OpGetProperty, encodeQName(name))
}

func (a *Assembler) SetProperty(name QName) *Assembler {
	return a.emitLong(OpSetProperty, encodeQName(name))
}

func (a *Assembler) InitProperty(name QName) *Assembler {
	return a.emitLong(OpInitProperty, encodeQName(name))
}

// CallProperty pops object then argc args (in push order) and invokes the
// resolved method, pushing its result.
func (a *Assembler) CallProperty(name QName, argc byte) *Assembler {
	operand := encodeQName(name)
	operand = append(operand, argc)
	return a.emitLong(OpCallProperty, operand)
}

func (a *Assembler) Jump(offset int16) *Assembler {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(offset))
	return a.emitLong(OpJump, buf[:])
}

func (a *Assembler) IfFalse(offset int16) *Assembler {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(offset))
	return a.emitLong(OpIfFalse, buf[:])
}
