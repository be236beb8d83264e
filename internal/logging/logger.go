// Package logging provides the leveled stderr logger used by every
// vaultmig command, plus redaction helpers that keep secret values out
// of log output.
package logging

import (
	"fmt"
	"os"
	"strings"
)

// Level controls which messages a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a --log-level flag value into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", s)
	}
}

// Logger writes leveled, optionally colored messages to stderr.
type Logger struct {
	level   Level
	noColor bool
}

// New creates a new logger instance
func New(level Level, noColor bool) *Logger {
	return &Logger{
		level:   level,
		noColor: noColor,
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level > LevelInfo {
		return
	}
	l.emit("\033[32m✓\033[0m", "✓", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level > LevelWarn {
		return
	}
	l.emit("\033[33m⚠\033[0m", "⚠", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("\033[31m✗\033[0m", "✗", format, args...)
}

// Debug logs a debug message if debug level is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level > LevelDebug {
		return
	}
	l.emit("\033[36m[DEBUG]\033[0m", "[DEBUG]", format, args...)
}

func (l *Logger) emit(colorPrefix, plainPrefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	prefix := colorPrefix
	if l.noColor {
		prefix = plainPrefix
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, msg)
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// RedactValues replaces every field value of a secret's value-map with
// asterisks, keeping the field names visible for log output.
func RedactValues(values map[string]string) map[string]string {
	redacted := make(map[string]string, len(values))
	for name := range values {
		redacted[name] = "***"
	}
	return redacted
}

// RedactTree applies RedactValues to every secret of a path-indexed map.
func RedactTree(secrets map[string]map[string]string) map[string]map[string]string {
	redacted := make(map[string]map[string]string, len(secrets))
	for path, values := range secrets {
		redacted[path] = RedactValues(values)
	}
	return redacted
}
