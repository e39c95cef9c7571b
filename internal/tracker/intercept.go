package tracker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/retracehq/retrace/internal/action"
	"github.com/retracehq/retrace/internal/pattern"
	"github.com/retracehq/retrace/internal/thought"
	"github.com/retracehq/retrace/internal/timeline"
)

// modelNameRe recovers a model name from cost lines that mention one in
// passing, e.g. "Estimated cost: $0.003 (model=gpt-4o)".
var modelNameRe = regexp.MustCompile(`model[=:]\s*([\w./:-]+)`)

// Intercept processes one log line. It is safe for concurrent use and never
// panics into the host: a failure while evaluating a line downgrades it to an
// unrecognized entry instead.
func (s *Session) Intercept(line Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}

	ts := line.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	defer func() {
		if r := recover(); r != nil {
			s.diag.Error("line evaluation panicked: %v", r)
			s.model.AddUnknown(timeline.UnknownLine{
				Message:   line.Text,
				Timestamp: ts,
				Note:      fmt.Sprintf("evaluation failed: %v", r),
			})
		}
	}()

	text := strings.TrimSpace(line.Text)
	if text == "" {
		return
	}
	s.steps.Observe(ts)

	s.routeLocked(text, ts)
	s.maybeFlushLocked(ts)
}

// routeLocked dispatches one trimmed line. Callers hold mu.
func (s *Session) routeLocked(text string, ts time.Time) {
	// Bare JSON objects are action payloads even without an "Action:" label.
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		if rec := action.Parse(text, 0, ts); rec.Payload != nil {
			s.recordActionLocked(rec, ts)
			return
		}
	}

	m, ok := s.patterns.Match(text)
	if !ok {
		s.recordUnknownLocked(text, ts, "")
		return
	}

	switch m.Kind {
	case pattern.KindAction:
		s.recordActionLocked(action.Parse(m.Text, 0, ts), ts)
	case pattern.KindStepStart:
		s.steps.Start(m.Step, ts)
	case pattern.KindStepEnd:
		s.steps.Complete(m.Step, ts)
	case pattern.KindThought:
		s.recordThoughtLocked(m, ts)
	case pattern.KindScreenshot:
		s.recordScreenshotLocked(m, ts)
	case pattern.KindLLMRequest, pattern.KindLLMResponse:
		s.recordLLMUsageLocked(m)
	case pattern.KindLLMCost:
		s.recordLLMCostLocked(m, text)
	default:
		s.recordUnknownLocked(text, ts, fmt.Sprintf("unhandled kind %q", m.Kind))
	}
}

// recordActionLocked binds a classified action to the open step, implicitly
// opening step 1 when no step is open.
func (s *Session) recordActionLocked(rec action.Record, ts time.Time) {
	stepRec := s.steps.Ensure(ts)
	rec.Step = stepRec.Number
	stepRec.Actions = append(stepRec.Actions, rec)
}

// recordThoughtLocked stores a thought on the open step, dropping duplicates.
// Evaluation thoughts additionally set the step outcome.
func (s *Session) recordThoughtLocked(m *pattern.Match, ts time.Time) {
	stepRec := s.steps.Ensure(ts)
	rec, stored := s.thoughts.Add(stepRec.Number, m.Label, m.Text, ts)
	if !stored {
		return
	}
	stepRec.Thoughts = append(stepRec.Thoughts, rec)
	if rec.Category == thought.CategoryEvaluation {
		if outcome := inferOutcome(m.Hint, rec.Text); outcome != timeline.OutcomeUnknown {
			stepRec.Outcome = outcome
		}
	}
}

// recordScreenshotLocked records a standalone screenshot event.
func (s *Session) recordScreenshotLocked(m *pattern.Match, ts time.Time) {
	if !s.screenshots {
		return
	}
	e := timeline.Event{
		Title:     "Screenshot captured",
		Icon:      "📸",
		Timestamp: ts,
	}
	if m.Text != "" {
		e.Description = m.Text
		e.Metadata = map[string]any{"path": m.Text}
	}
	s.model.AddEvent(e)
}

// recordLLMUsageLocked accumulates a request or response usage line. The
// rules put the model name in group 1 and the token count in group 2.
func (s *Session) recordLLMUsageLocked(m *pattern.Match) {
	var model string
	var tokens int
	if len(m.Groups) > 1 {
		model = strings.TrimSpace(m.Groups[1])
	}
	if len(m.Groups) > 2 {
		tokens, _ = strconv.Atoi(m.Groups[2])
	}
	if m.Kind == pattern.KindLLMRequest {
		s.llm.RecordRequest(model, tokens)
	} else {
		s.llm.RecordResponse(model, tokens)
	}
}

// recordLLMCostLocked accumulates a cost estimate, attributing it to a model
// when the line names one.
func (s *Session) recordLLMCostLocked(m *pattern.Match, text string) {
	cost, err := strconv.ParseFloat(m.Text, 64)
	if err != nil {
		s.diag.Warning("unparseable cost value %q", m.Text)
		return
	}
	var model string
	if g := modelNameRe.FindStringSubmatch(text); g != nil {
		model = g[1]
	}
	s.llm.RecordCost(model, cost)
}

// inferOutcome maps an evaluation's status hint, or failing that its text,
// onto a step outcome. Ambiguous evaluations leave the outcome unknown.
func inferOutcome(hint, text string) timeline.Outcome {
	switch hint {
	case "👍", "Success":
		return timeline.OutcomeSuccess
	case "👎", "Failure":
		return timeline.OutcomeFailure
	case "🤷", "⚠️", "⚠", "Uncertain":
		return timeline.OutcomeUnknown
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "success"):
		return timeline.OutcomeSuccess
	case strings.Contains(lower, "fail"):
		return timeline.OutcomeFailure
	default:
		return timeline.OutcomeUnknown
	}
}

// recordUnknownLocked retains an unrecognized line, honoring the cap.
func (s *Session) recordUnknownLocked(text string, ts time.Time, note string) {
	s.model.AddUnknown(timeline.UnknownLine{
		Message:   text,
		Timestamp: ts,
		Note:      note,
	})
}
