// Package diag implements the diagnostic channel the `trace` opcode writes
// to: one line per invocation, tagged with the avm_trace target.
//
// The interpreter this was ported from never reaches for a third-party
// logging library for this purpose, so this package follows that example
// rather than introducing one: the ambient stack here is stdlib `log` plus
// a small in-memory buffer the test harness reads back, mirroring a
// regression-test harness that installs a custom logger filtering on the
// "avm_trace" target and accumulating lines into a string for golden-file
// comparison.
package diag

import (
	"log"
	"strings"
	"sync"
)

// Sink receives one formatted line per `trace` opcode invocation.
type Sink interface {
	TraceLine(line string)
}

// StdlibSink forwards every line to the standard logger, tagged with the
// avm_trace target the way the Rust implementation tags log::Record.
type StdlibSink struct {
	logger *log.Logger
}

// NewStdlibSink wraps l (or the default logger if l is nil).
func NewStdlibSink(l *log.Logger) *StdlibSink {
	if l == nil {
		l = log.Default()
	}
	return &StdlibSink{logger: l}
}

func (s *StdlibSink) TraceLine(line string) {
	s.logger.Printf("[avm_trace] %s", line)
}

// MemorySink captures trace lines for golden-file style test assertions,
// the Go-native equivalent of regression_tests.rs's thread_local TRACE_LOG.
type MemorySink struct {
	mu    sync.Mutex
	lines []string
}

// NewMemorySink constructs an empty capture buffer.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) TraceLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

// Lines returns a snapshot of every captured line, in emission order.
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Output joins the captured lines the way the golden output.txt fixtures
// are compared: one line per trace call, newline terminated.
func (s *MemorySink) Output() string {
	lines := s.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// MultiSink fans a trace line out to every wrapped sink (used to log to
// both stdlib log and an in-memory buffer simultaneously).
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink { return &MultiSink{sinks: sinks} }

func (m *MultiSink) TraceLine(line string) {
	for _, s := range m.sinks {
		s.TraceLine(line)
	}
}
