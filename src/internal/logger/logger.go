// Package logger wraps log/slog with a level taken from configuration.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Logger provides structured logging functionality.
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
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

// New creates a text logger writing to w.
func New(w io.Writer, level string) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(level))
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{internal: slog.New(handler), level: lvl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger { return New(io.Discard, "error") }

// Info logs an info level message.
func (l *Logger) Info(msg string, args ...any) { l.internal.Info(msg, args...) }

// Error logs an error level message.
func (l *Logger) Error(msg string, args ...any) { l.internal.Error(msg, args...) }

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...any) { l.internal.Debug(msg, args...) }

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...any) { l.internal.Warn(msg, args...) }

// With creates a child logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{internal: l.internal.With(args...), level: l.level}
}
