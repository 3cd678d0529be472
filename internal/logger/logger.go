// Package logger provides the process-wide logger for docctx.
// Debug and info messages are only emitted in verbose mode (--verbose);
// warnings and errors are always written. Output goes to stderr as
// slog text records so it never mixes with command output on stdout.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	level             = newLevel()
	base              = newLogger(os.Stderr)
)

func newLevel() *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelWarn)
	return lv
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Timestamps add noise to CLI diagnostics.
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newLogger(w)
}

// L returns the underlying structured logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// With returns a logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Enabled reports whether records at lvl would be written.
func Enabled(lvl slog.Level) bool {
	return L().Enabled(context.Background(), lvl)
}

// Debug logs a formatted message if verbose mode is enabled.
func Debug(format string, args ...any) {
	if !Enabled(slog.LevelDebug) {
		return
	}
	L().Debug(fmt.Sprintf(format, args...))
}

// Info logs a formatted message if verbose mode is enabled.
func Info(format string, args ...any) {
	if !Enabled(slog.LevelInfo) {
		return
	}
	L().Info(fmt.Sprintf(format, args...))
}

// Warn logs a formatted warning.
func Warn(format string, args ...any) {
	L().Warn(fmt.Sprintf(format, args...))
}

// Error logs a formatted error.
func Error(format string, args ...any) {
	L().Error(fmt.Sprintf(format, args...))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
