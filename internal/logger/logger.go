// Package logger wraps log/slog behind package-level helpers so every
// component logs through one shared handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Options selects the handler built by Init.
type Options struct {
	// Debug lowers the level to slog.LevelDebug.
	Debug bool
	// Quiet raises the level to slog.LevelError and wins over Debug.
	Quiet bool
	// JSON emits JSON records instead of text.
	JSON bool
	// Output defaults to stderr.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	shared = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
)

// Init replaces the shared logger. Safe to call again, e.g. after flag
// parsing upgraded the verbosity.
func Init(opts Options) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.Quiet {
		level = slog.LevelError
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	mu.Lock()
	shared = slog.New(handler)
	mu.Unlock()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return shared
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { current().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { current().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { current().Error(msg, args...) }
