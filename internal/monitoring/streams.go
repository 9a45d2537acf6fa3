package monitoring

import (
	"io"
	"log"
	"sync/atomic"
)

// Streams is a package's three log streams. Ops carries actionable warnings
// and errors, diag carries per-run summaries and trace carries per-cell
// detail. Every stream starts disabled.
type Streams struct {
	prefix string
	ops    atomic.Pointer[log.Logger]
	diag   atomic.Pointer[log.Logger]
	trace  atomic.Pointer[log.Logger]
}

// NewStreams returns disabled streams whose lines are prefixed "[name] ".
func NewStreams(name string) *Streams {
	return &Streams{prefix: "[" + name + "] "}
}

// SetWriters points the streams at ops, diag and trace. A nil writer
// disables its stream. Safe to call while other goroutines log.
func (s *Streams) SetWriters(ops, diag, trace io.Writer) {
	s.ops.Store(s.newLogger(ops))
	s.diag.Store(s.newLogger(diag))
	s.trace.Store(s.newLogger(trace))
}

func (s *Streams) newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, s.prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream.
func (s *Streams) Opsf(format string, args ...interface{}) {
	if l := s.ops.Load(); l != nil {
		l.Printf(format, args...)
	}
}

// Diagf logs to the diag stream.
func (s *Streams) Diagf(format string, args ...interface{}) {
	if l := s.diag.Load(); l != nil {
		l.Printf(format, args...)
	}
}

// Tracef logs to the trace stream.
func (s *Streams) Tracef(format string, args ...interface{}) {
	if l := s.trace.Load(); l != nil {
		l.Printf(format, args...)
	}
}
