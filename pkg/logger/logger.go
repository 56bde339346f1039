// Package logger provides the levelled, field-structured logger used by the
// scan pipeline. Diagnostics go to stderr so stdout stays free for progress
// lines and piped output.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config value such as "debug" or "WARN" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off", "none":
		return LevelSilent, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger provides structured logging with configurable levels
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	SetLevel(level Level)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value any
}

// F is a convenience function for creating fields
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component tags every line of the returned logger with the emitting stage.
func Component(l Logger, name string) Logger {
	return l.WithFields(F("component", name))
}

// standardLogger implements Logger interface
type standardLogger struct {
	level  *levelBox
	out    io.Writer
	mu     *sync.Mutex
	fields []Field
	clock  func() time.Time
}

// levelBox is shared by a logger and all loggers derived from it, so
// SetLevel on the root also quiets component loggers.
type levelBox struct {
	mu    sync.RWMutex
	level Level
}

func (b *levelBox) get() Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.level
}

func (b *levelBox) set(level Level) {
	b.mu.Lock()
	b.level = level
	b.mu.Unlock()
}

// NewLogger creates a new logger with the specified level and output
func NewLogger(level Level, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	return &standardLogger{
		level:  &levelBox{level: level},
		out:    out,
		mu:     &sync.Mutex{},
		fields: make([]Field, 0),
		clock:  time.Now,
	}
}

// NewDefaultLogger creates a logger with Info level writing to stderr
func NewDefaultLogger() Logger {
	return NewLogger(LevelInfo, os.Stderr)
}

// NewSilentLogger creates a logger that outputs nothing
func NewSilentLogger() Logger {
	return NewLogger(LevelSilent, io.Discard)
}

// SetLevel sets the minimum logging level
func (l *standardLogger) SetLevel(level Level) {
	l.level.set(level)
}

// WithFields returns a new logger with additional fields
func (l *standardLogger) WithFields(fields ...Field) Logger {
	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &standardLogger{
		level:  l.level,
		out:    l.out,
		mu:     l.mu,
		fields: newFields,
		clock:  l.clock,
	}
}

// Debug logs a debug message
func (l *standardLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message
func (l *standardLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message
func (l *standardLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message
func (l *standardLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

func (l *standardLogger) log(level Level, msg string, fields ...Field) {
	if level < l.level.get() {
		return
	}

	var b strings.Builder
	b.WriteString(l.clock().Format("2006-01-02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	if len(l.fields)+len(fields) > 0 {
		b.WriteString(" |")
		for _, field := range l.fields {
			fmt.Fprintf(&b, " %s=%v", field.Key, field.Value)
		}
		for _, field := range fields {
			fmt.Fprintf(&b, " %s=%v", field.Key, field.Value)
		}
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, b.String())
}

// Global default logger
var (
	defaultMu     sync.RWMutex
	defaultLogger = NewDefaultLogger()
)

// SetDefault sets the global default logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the global default logger
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}
