package tracker

import (
	"bytes"
	"sync"
	"time"
)

// Line is one raw log line with its arrival timestamp. Lines are ephemeral:
// the session consumes them immediately and keeps only what it extracted.
type Line struct {
	Text string
	Time time.Time
}

// Source is the host logging subsystem a session attaches to. Subscribe
// registers the handler for every future line and returns a cancel function
// that detaches it. Implementations must not invoke the handler synchronously
// from within Subscribe.
type Source interface {
	Subscribe(fn func(Line)) (cancel func(), err error)
}

// LineWriter adapts a session to an io.Writer so hosts whose logging writes
// to a writer (the stdlib log package, command pipes) can feed it directly.
// Partial lines are buffered until their newline arrives.
type LineWriter struct {
	mu   sync.Mutex
	fn   func(Line)
	buf  bytes.Buffer
	stop bool
}

// NewLineWriter returns a writer that forwards each complete line to fn,
// stamped with its arrival time.
func NewLineWriter(fn func(Line)) *LineWriter {
	return &LineWriter{fn: fn}
}

// Write implements io.Writer. It never returns an error: a tracing sink must
// not break the host's logging.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stop {
		return len(p), nil
	}

	w.buf.Write(p)
	now := time.Now()
	for {
		data := w.buf.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := string(data[:idx])
		w.buf.Next(idx + 1)
		if line != "" {
			w.fn(Line{Text: line, Time: now})
		}
	}
	return len(p), nil
}

// Close flushes any trailing partial line and stops forwarding.
func (w *LineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stop {
		return nil
	}
	if rest := w.buf.String(); rest != "" {
		w.fn(Line{Text: rest, Time: time.Now()})
		w.buf.Reset()
	}
	w.stop = true
	return nil
}

// Subscribe implements Source so a LineWriter can also stand alone as the
// attachment point between a host writer and a session.
func (w *LineWriter) Subscribe(fn func(Line)) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fn = fn
	w.stop = false
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.stop = true
	}, nil
}
