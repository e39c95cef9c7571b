// Package step implements the state machine that turns boundary signals into
// discrete, numbered steps. The tracker mutates the session's timeline model
// and owns the notion of the "current" step; it is not safe for concurrent
// use on its own, the session serializes access.
package step

import (
	"fmt"
	"time"

	"github.com/retracehq/retrace/internal/thought"
	"github.com/retracehq/retrace/internal/timeline"
)

// placeholderText fills the thought slots of gap-synthesized steps so the
// exported trace makes the missing content visible.
const placeholderText = "(not captured)"

// Tracker drives step transitions against a timeline model.
type Tracker struct {
	model *timeline.Model

	// current is the open step number, 0 when none is open.
	current int
	// highest is the largest step number seen, used for gap synthesis.
	highest int
	// lastSeen is the most recent line timestamp, used to close the final
	// step when tracking finishes.
	lastSeen time.Time
}

// New returns a tracker bound to the given model.
func New(m *timeline.Model) *Tracker {
	return &Tracker{model: m}
}

// Current returns the open step record, or nil when no step is open.
func (t *Tracker) Current() *timeline.StepRecord {
	if t.current == 0 {
		return nil
	}
	return t.model.Step(t.current)
}

// CurrentNumber returns the open step number, 0 when none is open.
func (t *Tracker) CurrentNumber() int {
	return t.current
}

// Observe records the timestamp of any processed line so Finish can close
// the last step at the final observed time.
func (t *Tracker) Observe(ts time.Time) {
	if ts.After(t.lastSeen) {
		t.lastSeen = ts
	}
}

// LastSeen returns the most recent observed line timestamp, zero when no
// line was ever observed.
func (t *Tracker) LastSeen() time.Time {
	return t.lastSeen
}

// Start handles an explicit step-start marker. A number below 1 is clamped
// to 1 with a diagnostic note instead of being rejected. Gaps between the
// previous step and n are filled with implicitly initialized placeholder
// steps.
func (t *Tracker) Start(n int, ts time.Time) *timeline.StepRecord {
	t.Observe(ts)

	var clamped bool
	if n < 1 {
		n, clamped = 1, true
	}

	// Re-announcement of the open step is a no-op.
	if t.current == n {
		return t.model.Step(n)
	}

	if t.current != 0 {
		t.close(t.current, ts, false)
	}

	// Synthesize every missing step between the highest seen and n.
	for gap := t.highest + 1; gap < n; gap++ {
		t.synthesize(gap, n, ts)
	}

	rec := t.open(n, ts, false)
	if clamped {
		rec.Notes = append(rec.Notes, "step number below 1 clamped to 1")
	}
	return rec
}

// Complete handles an explicit step-end marker.
func (t *Tracker) Complete(n int, ts time.Time) {
	t.Observe(ts)

	if n < 1 {
		n = 1
	}
	if !t.model.HasStep(n) {
		// Completion for a step never opened: materialize it so the marker
		// is not lost, flagged implicit. The record is created directly,
		// not opened, so a different step that is currently open stays
		// current.
		rec := t.model.Step(n)
		rec.StartedAt = ts
		rec.InitializedImplicitly = true
		rec.Notes = append(rec.Notes, "completion marker arrived before any start marker")
		if n > t.highest {
			t.highest = n
		}
	}
	t.close(n, ts, true)
	if t.current == n {
		t.current = 0
	}
}

// Ensure returns the open step, implicitly opening step 1 when none is open.
// Orphaned thoughts and actions land here. Reopening a step 1 that an
// explicit marker already materialized does not flag it implicit.
func (t *Tracker) Ensure(ts time.Time) *timeline.StepRecord {
	t.Observe(ts)

	if t.current != 0 {
		return t.model.Step(t.current)
	}
	existed := t.model.HasStep(1)
	rec := t.open(1, ts, !existed)
	if !existed {
		rec.Notes = append(rec.Notes, "opened implicitly by orphaned content")
	}
	return rec
}

// Finish closes any still-open step at the last observed timestamp.
func (t *Tracker) Finish() {
	if t.current == 0 {
		return
	}
	ts := t.lastSeen
	if ts.IsZero() {
		ts = time.Now()
	}
	t.close(t.current, ts, true)
	t.current = 0
}

// open materializes and opens a step.
func (t *Tracker) open(n int, ts time.Time, implicit bool) *timeline.StepRecord {
	rec := t.model.Step(n)
	if rec.StartedAt.IsZero() {
		rec.StartedAt = ts
	}
	if implicit {
		rec.InitializedImplicitly = true
	}
	t.current = n
	if n > t.highest {
		t.highest = n
	}
	return rec
}

// close stamps the end of a step. Only an explicit completion marker sets
// the completeness flag; a step superseded by the next start still receives
// its end timestamp and a start-to-start duration.
func (t *Tracker) close(n int, ts time.Time, explicit bool) {
	rec := t.model.Step(n)
	if rec.EndedAt == nil {
		end := ts
		if end.Before(rec.StartedAt) {
			end = rec.StartedAt
		}
		rec.EndedAt = &end
		rec.DurationSeconds = end.Sub(rec.StartedAt).Seconds()
	}
	if explicit {
		rec.Complete = true
	}
}

// synthesize fills one missing step number with an implicitly initialized
// record carrying placeholder thought content in every primary category.
func (t *Tracker) synthesize(n, target int, ts time.Time) {
	rec := t.model.Step(n)
	rec.InitializedImplicitly = true
	rec.StartedAt = ts
	end := ts
	rec.EndedAt = &end
	rec.Notes = append(rec.Notes, fmt.Sprintf("synthesized to fill gap before step %d", target))
	for _, label := range []string{"evaluation", "memory", "next_goal"} {
		rec.Thoughts = append(rec.Thoughts, thought.Record{
			Step:      n,
			Category:  thought.NormalizeLabel(label),
			Text:      placeholderText,
			Label:     label,
			Timestamp: ts,
		})
	}
	if n > t.highest {
		t.highest = n
	}
}
