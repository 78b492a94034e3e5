// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for darkroom and its backends.
// By default, darkroom produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by darkroom:
//   - [slog.LevelDebug]: buffer sizes, dispatch geometry, LUT cache activity
//   - [slog.LevelInfo]: lifecycle events (GPU adapter selected, backend closed)
//   - [slog.LevelWarn]: non-fatal issues (GPU unavailable, resource release errors)
//
// Example:
//
//	darkroom.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	sinksMu.Lock()
	sinks := append([]LoggerSetter(nil), loggerSinks...)
	sinksMu.Unlock()
	for _, s := range sinks {
		s.SetLogger(l)
	}
}

// Logger returns the current logger used by darkroom.
// Backend packages call this to share the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// LoggerSetter is implemented by backends that keep their own package
// logger and want SetLogger changes propagated to them.
type LoggerSetter interface {
	SetLogger(*slog.Logger)
}

var (
	sinksMu     sync.Mutex
	loggerSinks []LoggerSetter
)

// RegisterLoggerSink subscribes s to future SetLogger calls and immediately
// hands it the current logger.
func RegisterLoggerSink(s LoggerSetter) {
	if s == nil {
		return
	}
	sinksMu.Lock()
	loggerSinks = append(loggerSinks, s)
	sinksMu.Unlock()
	s.SetLogger(Logger())
}
