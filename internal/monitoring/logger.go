package monitoring

import (
	"errors"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logf is the package-level process logger used by the CLI and the batch
// runner. It defaults to log.Printf but may be replaced by SetLogger or
// SetLogFile. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// LogFile configures a size-rotated log file.
type LogFile struct {
	Path       string
	MaxSizeMB  int  // Rotate after this many megabytes (default: 100)
	MaxBackups int  // Rotated files to keep; 0 keeps all
	Compress   bool // Gzip rotated files
	Quiet      bool // Do not also write to stderr
}

// SetLogFile routes Logf to a rotating file, and to stderr unless Quiet is
// set. The returned writer can be handed to package SetLogWriters so their
// streams land in the same file; close it on shutdown.
func SetLogFile(cfg LogFile) (io.WriteCloser, error) {
	if cfg.Path == "" {
		return nil, errors.New("log file path is empty")
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	var w io.Writer = lj
	if !cfg.Quiet {
		w = io.MultiWriter(os.Stderr, lj)
	}
	Logf = log.New(w, "", log.LstdFlags|log.Lmicroseconds).Printf
	return lj, nil
}
