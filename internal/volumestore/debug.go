package volumestore

import (
	"io"

	"github.com/banshee-data/voxelfix/internal/monitoring"
)

var logs = monitoring.NewStreams("volumestore")

// SetLogWriters configures the ops, diag and trace streams of the volumestore
// package. Pass nil for any writer to disable that stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	logs.SetWriters(ops, diag, trace)
}

// opsf logs failed reads and writes.
func opsf(format string, args ...interface{}) { logs.Opsf(format, args...) }

// diagf logs saves, loads and migrations.
func diagf(format string, args ...interface{}) { logs.Diagf(format, args...) }

// tracef logs per-entry listing.
func tracef(format string, args ...interface{}) { logs.Tracef(format, args...) }
