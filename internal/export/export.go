// Package export serializes a session's trace and statistics to durable JSON
// artifacts. Export failures are surfaced to the caller as errors but never
// destroy the in-memory trace, and every write survives missing target
// directories and non-serializable metadata.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/retracehq/retrace/internal/llmstats"
	"github.com/retracehq/retrace/internal/thought"
	"github.com/retracehq/retrace/internal/timeline"
)

// Artifact filenames within an output directory.
const (
	TimelineFilename = "timeline.json"
	ThinkingFilename = "thinking_logs.json"
	SummaryFilename  = "summary_logs.json"
	UnknownFilename  = "unknown_messages.jsonl"
)

// TimelineDocument is the timeline.json shape. Timeline is always a list
// sorted ascending by step number, never a mapping.
type TimelineDocument struct {
	Title      string                `json:"title"`
	Prompt     string                `json:"prompt,omitempty"`
	SessionID  string                `json:"session_id"`
	StartTime  time.Time             `json:"start_time"`
	EndTime    *time.Time            `json:"end_time,omitempty"`
	TotalSteps int                   `json:"total_steps"`
	Events     []timeline.Event      `json:"events,omitempty"`
	Timeline   []timeline.StepRecord `json:"timeline"`
}

// Diagnostics carries detected-vs-processed style counters for debugging the
// reconstruction itself.
type Diagnostics struct {
	UnknownRetained int `json:"unknown_retained"`
	UnknownDropped  int `json:"unknown_dropped"`
	ThoughtsSeen    int `json:"thoughts_detected"`
	ThoughtsKept    int `json:"thoughts_processed"`
}

// SummaryDocument is the summary_logs.json shape.
type SummaryDocument struct {
	Thoughts    thought.Summary       `json:"thoughts"`
	Steps       timeline.StepsSummary `json:"steps"`
	LLM         *llmstats.Stats       `json:"llm,omitempty"`
	Diagnostics Diagnostics           `json:"diagnostics"`
}

// Exporter writes artifacts beneath one output directory.
type Exporter struct {
	dir string
}

// New returns an exporter rooted at dir. The directory does not need to
// exist yet.
func New(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Dir returns the exporter's output directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// WriteTimeline writes timeline.json.
func (e *Exporter) WriteTimeline(doc *TimelineDocument) error {
	return WriteJSON(filepath.Join(e.dir, TimelineFilename), doc)
}

// WriteThinking writes the flat ordered thought list to thinking_logs.json.
func (e *Exporter) WriteThinking(records []thought.Record) error {
	if records == nil {
		records = []thought.Record{}
	}
	return WriteJSON(filepath.Join(e.dir, ThinkingFilename), records)
}

// WriteSummary writes summary_logs.json.
func (e *Exporter) WriteSummary(doc *SummaryDocument) error {
	return WriteJSON(filepath.Join(e.dir, SummaryFilename), doc)
}

// WriteJSON marshals v (after sanitizing non-serializable metadata) and
// writes it to path, creating missing directories. A failed write is retried
// once before the error is surfaced.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// Marshal failure means some metadata value resisted encoding;
		// coerce and try once more.
		data, err = json.MarshalIndent(Sanitize(v), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		// One retry; transient filesystem hiccups are common on network mounts.
		if retryErr := os.WriteFile(path, data, 0644); retryErr != nil {
			return fmt.Errorf("failed to write %s: %w", filepath.Base(path), retryErr)
		}
	}
	return nil
}

// ReadTimeline loads a previously exported timeline.json.
func ReadTimeline(path string) (*TimelineDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline: %w", err)
	}
	var doc TimelineDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse timeline: %w", err)
	}
	return &doc, nil
}

// ReadSummary loads a previously exported summary_logs.json.
func ReadSummary(path string) (*SummaryDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	var doc SummaryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &doc, nil
}
