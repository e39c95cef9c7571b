// Package diag provides structured diagnostic logging for tracking sessions.
// Entries are written as JSON lines to an io.Writer so a host's log shipper
// can pick them up with severity and session labels intact. The tracker uses
// it for its own failures (pattern evaluation errors, export warnings),
// which must be reported without ever aborting the host's task.
package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Severity levels for structured diagnostics.
type Severity string

const (
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Entry is a single structured diagnostic record.
type Entry struct {
	Severity  Severity          `json:"severity"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	SessionID string            `json:"session_id,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Logger writes structured diagnostic entries. It is safe for concurrent use
// and safe to call after Close (entries are dropped).
type Logger struct {
	mu        sync.Mutex
	writer    io.Writer
	sessionID string
	labels    map[string]string
	closed    bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithLabels attaches fixed labels to every entry.
func WithLabels(labels map[string]string) Option {
	return func(l *Logger) {
		for k, v := range labels {
			l.labels[k] = v
		}
	}
}

// New returns a Logger writing JSON lines to w. A nil writer yields a
// no-op logger, which keeps call sites unconditional.
func New(w io.Writer, sessionID string, opts ...Option) *Logger {
	l := &Logger{
		writer:    w,
		sessionID: sessionID,
		labels:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log writes one entry at the given severity.
func (l *Logger) Log(severity Severity, message string, labels map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.writer == nil {
		return
	}

	entry := Entry{
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
		SessionID: l.sessionID,
	}
	if len(l.labels) > 0 || len(labels) > 0 {
		entry.Labels = make(map[string]string, len(l.labels)+len(labels))
		for k, v := range l.labels {
			entry.Labels[k] = v
		}
		for k, v := range labels {
			entry.Labels[k] = v
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Fall back to a plain line rather than dropping the diagnostic.
		fmt.Fprintf(l.writer, `{"severity":"ERROR","message":"diag marshal failed: %v"}`+"\n", err)
		return
	}
	l.writer.Write(data)
	io.WriteString(l.writer, "\n")
}

// Info writes an INFO entry.
func (l *Logger) Info(format string, args ...any) {
	l.Log(SeverityInfo, fmt.Sprintf(format, args...), nil)
}

// Warning writes a WARNING entry.
func (l *Logger) Warning(format string, args ...any) {
	l.Log(SeverityWarning, fmt.Sprintf(format, args...), nil)
}

// Error writes an ERROR entry.
func (l *Logger) Error(format string, args ...any) {
	l.Log(SeverityError, fmt.Sprintf(format, args...), nil)
}

// Close stops the logger. Subsequent calls are dropped silently.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}
