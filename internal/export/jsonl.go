package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONLSink appends records to a JSONL file, one JSON document per line.
// It is safe for concurrent use and used for the best-effort periodic
// persistence of unrecognized log lines.
type JSONLSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *bufio.Writer
}

// NewJSONLSink opens (or creates) the file at path in append mode, creating
// missing parent directories.
func NewJSONLSink(path string) (*JSONLSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}

	return &JSONLSink{
		path:   path,
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// Path returns the sink's file path.
func (s *JSONLSink) Path() string {
	return s.path
}

// Write appends one record as a JSON line.
func (s *JSONLSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("sink is closed")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush pushes buffered records to disk.
func (s *JSONLSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

// Close flushes remaining records and closes the file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	if err := s.writer.Flush(); err != nil {
		_ = s.file.Close()
		s.file = nil
		return fmt.Errorf("failed to flush before close: %w", err)
	}
	if err := s.file.Close(); err != nil {
		s.file = nil
		return fmt.Errorf("failed to close: %w", err)
	}
	s.file = nil
	return nil
}
