package avm2

import (
	"github.com/flashruntime/corevm/internal/gcarena"
	"github.com/flashruntime/corevm/internal/value"
)

// TryRange is one exception-handler range within a scripted method: an
// uncaught ScriptError raised while PC is in [Start, End) unwinds to
// TargetPC instead of escaping the activation, the way a VM2 try/catch
// compiles (§4.8, §7).
type TryRange struct {
	Start, End int
	TargetPC   int
	CatchType  *Class // not consulted by the driver: a covering range catches any thrown value
}

// Activation is VM2's per-call execution record: the register-based analogue
// of avm1.Activation. It is mutable only in PC and register contents; This,
// Method, and the try-range table are fixed for the activation's lifetime.
type Activation struct {
	driver *Driver

	method *Method
	this   *Object
	args   []value.Value

	code      Bytecode
	pc        int
	registers *RegisterSet
	tryRanges []TryRange
}

// NewActivation constructs a method activation: register 0 holds `this`,
// registers 1..ParamCount hold the bound arguments, and the rest start
// Undefined.
func NewActivation(d *Driver, m *Method, this *Object, args []value.Value, tryRanges []TryRange) *Activation {
	regCount := m.RegisterCount
	if regCount < m.ParamCount+1 {
		regCount = m.ParamCount + 1
	}
	rs := NewRegisterSet(regCount)
	rs.Set(0, value.Object(this))
	for i, a := range args {
		if i >= m.ParamCount {
			break
		}
		rs.Set(i+1, a)
	}
	return &Activation{
		driver:    d,
		method:    m,
		this:      this,
		args:      args,
		code:      m.Code,
		pc:        0,
		registers: rs,
		tryRanges: tryRanges,
	}
}

func (a *Activation) This() *Object       { return a.this }
func (a *Activation) Method() *Method      { return a.method }
func (a *Activation) Code() Bytecode       { return a.code }
func (a *Activation) PC() int              { return a.pc }
func (a *Activation) SetPC(pc int)         { a.pc = pc }
func (a *Activation) Register(i int) value.Value       { return a.registers.Get(i) }
func (a *Activation) SetRegister(i int, v value.Value) { a.registers.Set(i, v) }

// HandlerFor returns the first try-range in table order that covers pc, if
// any -- used by the driver to decide whether a ScriptError unwinds the whole activation
// or jumps to a catch target.
func (a *Activation) HandlerFor(pc int) (TryRange, bool) {
	for _, r := range a.tryRanges {
		if pc >= r.Start && pc < r.End {
			return r, true
		}
	}
	return TryRange{}, false
}

func (a *Activation) GCTrace(vis *gcarena.Visitor) {
	if a.this != nil {
		vis.Visit(a.this)
	}
	for _, arg := range a.args {
		arg.GCTrace(vis)
	}
	if a.registers != nil {
		vis.Visit(a.registers)
	}
}

var _ gcarena.Traceable = (*Activation)(nil)
