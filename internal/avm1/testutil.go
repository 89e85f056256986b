package avm1

import (
	"github.com/flashruntime/corevm/internal/diag"
	"github.com/flashruntime/corevm/internal/host"
)

// TestHarness bundles a Driver with the sinks and context tests need to
// assert against, the same role with_avm plays in test_utils.rs.
type TestHarness struct {
	Driver  *Driver
	Context *host.Context
	Trace   *diag.MemorySink
}

// NewTestHarness builds a driver with a fresh global object, a deterministic
// test ActionContext, and an in-memory trace sink.
func NewTestHarness(version uint8) *TestHarness {
	ctx := host.NewTestContext(version)
	trace := diag.NewMemorySink()
	return &TestHarness{
		Driver:  NewDriver(ctx, trace),
		Context: ctx,
		Trace:   trace,
	}
}

// Run assembles and executes a bootstrap-level script (a DoAction-equivalent
// top-level action list), returning the captured trace output.
func (h *TestHarness) Run(version uint8, code Bytecode) (string, error) {
	if err := h.Driver.RunFromNothing(version, code); err != nil {
		return h.Trace.Output(), err
	}
	return h.Trace.Output(), nil
}
