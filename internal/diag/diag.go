// Package diag provides the ops/diag/trace logging streams shared by the
// reader, renderers, solver and command-line tools.
//
//   - ops: actionable warnings, errors and lifecycle events
//   - diag: per-run diagnostics such as grid sizes and files written
//   - trace: per-iteration solver telemetry
package diag

import (
	"io"
	"log"
	"sync"
)

// Stream selects one of the logging streams.
type Stream int

const (
	StreamOps Stream = iota
	StreamDiag
	StreamTrace
	numStreams
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var (
	mu      sync.RWMutex
	prefix  = "[heat] "
	loggers [numStreams]*log.Logger
)

// SetPrefix changes the line prefix used by loggers created by the next
// SetLogWriters call.
func SetPrefix(p string) {
	mu.Lock()
	defer mu.Unlock()
	prefix = p
}

// SetLogWriters configures all three logging streams at once.
// A nil writer disables its stream.
func SetLogWriters(w LogWriters) {
	mu.Lock()
	defer mu.Unlock()
	for s, out := range [numStreams]io.Writer{w.Ops, w.Diag, w.Trace} {
		loggers[s] = nil
		if out != nil {
			loggers[s] = log.New(out, prefix, log.LstdFlags|log.Lmicroseconds)
		}
	}
}

// Enabled reports whether s has a writer.
func Enabled(s Stream) bool {
	return logger(s) != nil
}

func logger(s Stream) *log.Logger {
	if s < 0 || s >= numStreams {
		return nil
	}
	mu.RLock()
	defer mu.RUnlock()
	return loggers[s]
}

// Logf writes to stream s if it is enabled.
func Logf(s Stream, format string, args ...interface{}) {
	if l := logger(s); l != nil {
		l.Printf(format, args...)
	}
}

func Opsf(format string, args ...interface{})   { Logf(StreamOps, format, args...) }
func Diagf(format string, args ...interface{})  { Logf(StreamDiag, format, args...) }
func Tracef(format string, args ...interface{}) { Logf(StreamTrace, format, args...) }
