// Package logger is scout's process-wide slog wrapper. Records go to a log
// file, to stderr, or to a writer installed by the terminal UI.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config describes logger settings.
type Config struct {
	Enabled bool
	Level   string
	Stdout  bool // mirror records to stderr; stdout belongs to the transcript
	File    string
}

var (
	mu      sync.RWMutex
	base    *slog.Logger
	enabled = true

	current   Config
	file      *os.File
	intercept io.Writer
)

// Init configures the logger. A relative File is resolved against dir.
// A log file that cannot be opened is reported but does not disable the
// remaining writers.
func Init(cfg Config, dir string) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	current = cfg

	if !cfg.Enabled {
		enabled = false
		base = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	var initErr error
	if cfg.File != "" {
		path := ResolvePath(cfg.File, dir)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			initErr = fmt.Errorf("logger: create log dir: %w", err)
		} else if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err != nil {
			initErr = fmt.Errorf("logger: open log file: %w", err)
		} else {
			file = f
		}
	}

	rebuild()
	return initErr
}

// Intercept routes console output to w, typically the TUI log panel.
// The log file keeps receiving records.
func Intercept(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	intercept = w
	rebuild()
}

// Restore undoes Intercept.
func Restore() {
	mu.Lock()
	defer mu.Unlock()
	intercept = nil
	rebuild()
}

// Close releases the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	rebuild()
}

// must be called with mu held
func rebuild() {
	if !current.Enabled {
		return
	}
	var writers []io.Writer
	switch {
	case intercept != nil:
		writers = append(writers, intercept)
	case current.Stdout:
		writers = append(writers, os.Stderr)
	}
	if file != nil {
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		enabled = false
		base = nil
		return
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(current.Level)}
	base = slog.New(slog.NewTextHandler(io.MultiWriter(writers...), opts))
	enabled = true
}

// Debug logs a debug message.
func Debug(msg string, args ...any) { log(slog.LevelDebug, msg, args...) }

// Info logs an info message.
func Info(msg string, args ...any) { log(slog.LevelInfo, msg, args...) }

// Warn logs a warning message.
func Warn(msg string, args ...any) { log(slog.LevelWarn, msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { log(slog.LevelError, msg, args...) }

func log(level slog.Level, msg string, args ...any) {
	mu.RLock()
	l, on := base, enabled
	mu.RUnlock()

	if !on || l == nil {
		return
	}
	l.Log(context.Background(), level, msg, args...)
}

// Fields is a set of attributes prepended to every record logged through it.
// It resolves the package logger on each call, so it follows Intercept and
// Restore.
type Fields []any

// With returns Fields carrying args.
func With(args ...any) Fields { return Fields(args) }

func (f Fields) Debug(msg string, args ...any) { log(slog.LevelDebug, msg, f.join(args)...) }
func (f Fields) Info(msg string, args ...any)  { log(slog.LevelInfo, msg, f.join(args)...) }
func (f Fields) Warn(msg string, args ...any)  { log(slog.LevelWarn, msg, f.join(args)...) }
func (f Fields) Error(msg string, args ...any) { log(slog.LevelError, msg, f.join(args)...) }

func (f Fields) join(args []any) []any {
	if len(f) == 0 {
		return args
	}
	out := make([]any, 0, len(f)+len(args))
	out = append(out, f...)
	return append(out, args...)
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolvePath expands a leading ~ and joins relative paths onto dir.
func ResolvePath(path, dir string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
