// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging owns the process-wide leveled log sink. Everything in
// the library logs through L(); callers adjust verbosity through
// SetVerbosity without replacing the handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// L returns the library logger.
func L() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetVerbosity adjusts the minimum level that reaches the sink.
func SetVerbosity(l slog.Level) {
	level.Set(l)
}

// SetOutput redirects the sink. Tests use this to capture warnings.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}
