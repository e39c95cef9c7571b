// Package timeline holds the canonical in-memory trace: numbered steps,
// standalone events, and the unrecognized lines kept for diagnosis. Internal
// step storage is keyed by step number for O(1) update; the external contract
// is always the sorted list produced by Flatten.
package timeline

import (
	"time"

	"github.com/retracehq/retrace/internal/action"
	"github.com/retracehq/retrace/internal/thought"
)

// Outcome is the inferred result of a step's evaluation.
type Outcome string

const (
	// OutcomeSuccess means the step's evaluation reported success.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure means the step's evaluation reported failure.
	OutcomeFailure Outcome = "failure"
	// OutcomeUnknown means no evaluation was captured or it was ambiguous.
	OutcomeUnknown Outcome = "unknown"
)

// StepRecord is one reconstructed reasoning/action cycle.
type StepRecord struct {
	Number    int        `json:"step"`
	StartedAt time.Time  `json:"start_time"`
	EndedAt   *time.Time `json:"end_time,omitempty"`
	// DurationSeconds is populated when the step closes.
	DurationSeconds float64 `json:"duration_seconds"`
	// Complete reports an explicit completion marker was seen, or the step
	// was implicitly closed by the next step's start.
	Complete bool `json:"complete"`
	// InitializedImplicitly marks steps the tracker synthesized (gap fill
	// or orphaned content) rather than opened by an explicit marker.
	InitializedImplicitly bool             `json:"initialized_implicitly"`
	Thoughts              []thought.Record `json:"thoughts"`
	Actions               []action.Record  `json:"actions"`
	Outcome               Outcome          `json:"outcome"`
	// Notes carries diagnostic annotations, e.g. clamped step numbers.
	Notes []string `json:"notes,omitempty"`
}

// Event is a standalone timeline entry not owned by any step, such as a
// screenshot or a session lifecycle marker.
type Event struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UnknownLine is a log line that matched no recognizer.
type UnknownLine struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// DefaultUnknownCap bounds the retained unknown-line list.
const DefaultUnknownCap = 1000

// Model is the canonical trace for one session. It is mutated only by the
// session's interceptor while tracking, and frozen once tracking finishes.
type Model struct {
	Title     string
	Prompt    string
	SessionID string
	StartTime time.Time
	EndTime   *time.Time

	steps      map[int]*StepRecord
	events     []Event
	unknown    []UnknownLine
	unknownCap int
	dropped    int
	frozen     bool
}

// NewModel returns an empty model. A non-positive unknownCap selects the
// default.
func NewModel(title string, unknownCap int) *Model {
	if unknownCap <= 0 {
		unknownCap = DefaultUnknownCap
	}
	return &Model{
		Title:      title,
		steps:      make(map[int]*StepRecord),
		unknownCap: unknownCap,
	}
}

// Step returns the record for the given number, creating it if absent.
func (m *Model) Step(n int) *StepRecord {
	if rec, ok := m.steps[n]; ok {
		return rec
	}
	rec := &StepRecord{Number: n, Outcome: OutcomeUnknown}
	m.steps[n] = rec
	return rec
}

// HasStep reports whether a record exists for the given number.
func (m *Model) HasStep(n int) bool {
	_, ok := m.steps[n]
	return ok
}

// StepCount returns the number of materialized steps.
func (m *Model) StepCount() int {
	return len(m.steps)
}

// AddEvent appends a standalone event.
func (m *Model) AddEvent(e Event) {
	m.events = append(m.events, e)
}

// Events returns the standalone events in arrival order.
func (m *Model) Events() []Event {
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// AddUnknown records an unrecognized line, honoring the cap. It returns
// false when the line was dropped.
func (m *Model) AddUnknown(u UnknownLine) bool {
	if len(m.unknown) >= m.unknownCap {
		m.dropped++
		return false
	}
	m.unknown = append(m.unknown, u)
	return true
}

// Unknown returns the retained unrecognized lines in arrival order.
func (m *Model) Unknown() []UnknownLine {
	out := make([]UnknownLine, len(m.unknown))
	copy(out, m.unknown)
	return out
}

// DroppedUnknown returns how many unrecognized lines were dropped at the cap.
func (m *Model) DroppedUnknown() int {
	return m.dropped
}

// Freeze marks the model read-only. Freezing is advisory: the session stops
// routing mutations once frozen.
func (m *Model) Freeze() {
	m.frozen = true
}

// Frozen reports whether tracking has finished.
func (m *Model) Frozen() bool {
	return m.frozen
}
