package voxel

import (
	"io"

	"github.com/banshee-data/voxelfix/internal/monitoring"
)

var logs = monitoring.NewStreams("voxel")

// SetLogWriters configures the ops, diag and trace streams of the voxel
// package. Pass nil for any writer to disable that stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	logs.SetWriters(ops, diag, trace)
}

// opsf logs capacity violations and corrupt input.
func opsf(format string, args ...interface{}) { logs.Opsf(format, args...) }

// diagf logs volume construction and decode summaries.
func diagf(format string, args ...interface{}) { logs.Diagf(format, args...) }

// tracef logs node materialization.
func tracef(format string, args ...interface{}) { logs.Tracef(format, args...) }
