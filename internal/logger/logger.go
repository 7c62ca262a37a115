// Package logger provides a small logging interface for dmontop components.
// While the dashboard owns the terminal, standard log output is redirected to
// a file, so components log through this interface instead of writing to
// stdout or stderr directly.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// DebugEnv is the environment variable that enables debug output.
const DebugEnv = "DMONTOP_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// DebugEnabled reports whether DMONTOP_DEBUG is set.
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// envLogger writes through the standard log package, dropping Debug unless
// DMONTOP_DEBUG is set.
type envLogger struct {
	prefix string
}

// NewEnvLogger creates a logger whose lines start with prefix, e.g. "[dmontop]".
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if DebugEnabled() {
		l.print("", format, args)
	}
}

func (l *envLogger) Info(format string, args ...interface{})  { l.print("", format, args) }
func (l *envLogger) Warn(format string, args ...interface{})  { l.print("WARN: ", format, args) }
func (l *envLogger) Error(format string, args ...interface{}) { l.print("ERROR: ", format, args) }

func (l *envLogger) print(level, format string, args []interface{}) {
	log.Print(l.prefix + " " + level + fmt.Sprintf(format, args...))
}

// named tags every message with a component name.
type named struct {
	base      Logger
	component string
}

// Named returns a Logger that prefixes messages with "component: " before
// passing them to base. A nil base yields Noop.
func Named(base Logger, component string) Logger {
	if base == nil {
		return Noop()
	}
	return &named{base: base, component: component}
}

func (n *named) tag(format string) string { return n.component + ": " + format }

func (n *named) Debug(format string, args ...interface{}) { n.base.Debug(n.tag(format), args...) }
func (n *named) Info(format string, args ...interface{})  { n.base.Info(n.tag(format), args...) }
func (n *named) Warn(format string, args ...interface{})  { n.base.Warn(n.tag(format), args...) }
func (n *named) Error(format string, args ...interface{}) { n.base.Error(n.tag(format), args...) }

type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for tests. Safe for use from the
// sample logger's worker goroutine.
type BufferLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// Messages returns a copy of the captured messages.
func (l *BufferLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages() {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}
