package repair

import (
	"io"

	"github.com/banshee-data/voxelfix/internal/monitoring"
)

var logs = monitoring.NewStreams("repair")

// SetLogWriters configures the ops, diag and trace streams of the repair
// package. Pass nil for any writer to disable that stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	logs.SetWriters(ops, diag, trace)
}

// opsf logs fatal pass errors.
func opsf(format string, args ...interface{}) { logs.Opsf(format, args...) }

// diagf logs per-pass summaries.
func diagf(format string, args ...interface{}) { logs.Diagf(format, args...) }

// tracef logs per-cell decisions.
func tracef(format string, args ...interface{}) { logs.Tracef(format, args...) }
