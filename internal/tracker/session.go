// Package tracker composes the pattern registry, step state machine, thought
// store, and timeline model into a tracking session: the single entry point a
// host wires its log stream into. All mutation of session state runs under one
// mutex; the line path is synchronous and never blocks on I/O except the
// best-effort periodic persistence of unrecognized lines.
package tracker

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/retracehq/retrace/internal/diag"
	"github.com/retracehq/retrace/internal/export"
	"github.com/retracehq/retrace/internal/llmstats"
	"github.com/retracehq/retrace/internal/pattern"
	"github.com/retracehq/retrace/internal/step"
	"github.com/retracehq/retrace/internal/thought"
	"github.com/retracehq/retrace/internal/timeline"
)

// DefaultTitle is the timeline title when the host supplies none.
const DefaultTitle = "Agent Execution Timeline"

// DefaultFlushInterval is how often retained unrecognized lines are persisted
// while tracking runs.
const DefaultFlushInterval = 30 * time.Second

// ErrFinished is returned for operations that require a live session.
var ErrFinished = errors.New("tracking session already finished")

// Session is one tracking run: it intercepts a host's log lines, reconstructs
// the step timeline, and exports the artifacts when tracking finishes.
type Session struct {
	mu sync.Mutex

	id     string
	title  string
	prompt string

	// unknownCap is only consulted while New assembles the model.
	unknownCap int

	patterns *pattern.Registry
	thoughts *thought.Store
	steps    *step.Tracker
	model    *timeline.Model
	llm      *llmstats.Stats

	exporter      *export.Exporter
	unknownSink   *export.JSONLSink
	flushInterval time.Duration
	lastFlush     time.Time
	flushed       int

	logger *log.Logger
	diag   *diag.Logger

	screenshots bool
	cancel      func()
	finished    bool
	summary     *export.SummaryDocument
}

// Option configures a Session.
type Option func(*Session)

// WithTitle sets the timeline title.
func WithTitle(title string) Option {
	return func(s *Session) {
		if title != "" {
			s.title = title
		}
	}
}

// WithOutputDir enables artifact export into the given directory.
func WithOutputDir(dir string) Option {
	return func(s *Session) {
		if dir != "" {
			s.exporter = export.New(dir)
		}
	}
}

// WithUnknownCap bounds the retained unrecognized-line list. Non-positive
// values select the default cap.
func WithUnknownCap(n int) Option {
	return func(s *Session) {
		s.unknownCap = n
	}
}

// WithFlushInterval sets how often unrecognized lines are persisted.
// Non-positive values disable periodic flushing.
func WithFlushInterval(d time.Duration) Option {
	return func(s *Session) {
		s.flushInterval = d
	}
}

// WithRegistry replaces the builtin recognizer table, e.g. with one extended
// by user-supplied rules.
func WithRegistry(r *pattern.Registry) Option {
	return func(s *Session) {
		if r != nil {
			s.patterns = r
		}
	}
}

// WithLogger replaces the session's plain logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiagnostics attaches a structured diagnostic logger.
func WithDiagnostics(d *diag.Logger) Option {
	return func(s *Session) {
		if d != nil {
			s.diag = d
		}
	}
}

// WithScreenshots toggles recording of standalone screenshot events.
func WithScreenshots(enabled bool) Option {
	return func(s *Session) {
		s.screenshots = enabled
	}
}

// New creates a tracking session. The session is inert until lines are fed to
// Intercept or a source is attached with Install. Options only record
// settings; the model is assembled exactly once after all of them ran, so
// option order cannot reset collected state.
func New(opts ...Option) *Session {
	now := time.Now()
	s := &Session{
		id:            uuid.New().String(),
		title:         DefaultTitle,
		patterns:      pattern.NewRegistry(),
		thoughts:      thought.NewStore(),
		llm:           llmstats.New(),
		flushInterval: DefaultFlushInterval,
		lastFlush:     now,
		screenshots:   true,
		logger:        log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.model = timeline.NewModel(s.title, s.unknownCap)
	s.model.SessionID = s.id
	s.model.StartTime = now
	s.steps = step.New(s.model)
	if s.diag == nil {
		s.diag = diag.New(nil, s.id)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetPrompt records the task prompt shown in the exported timeline.
func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = prompt
	s.model.Prompt = prompt
}

// Install attaches the session to a log source. Every line the source emits
// from now on is intercepted until Uninstall or FinishTracking.
func (s *Session) Install(src Source) error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return ErrFinished
	}
	if s.cancel != nil {
		s.mu.Unlock()
		return errors.New("session already installed on a source")
	}
	s.mu.Unlock()

	cancel, err := src.Subscribe(s.Intercept)
	if err != nil {
		return fmt.Errorf("failed to attach to log source: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.finished {
		cancel()
		return errors.New("session already installed on a source")
	}
	s.cancel = cancel
	s.model.AddEvent(timeline.Event{
		Title:     "Tracking started",
		Icon:      "▶️",
		Timestamp: time.Now(),
	})
	s.logger.Printf("retrace: interceptor installed (session %s)", s.id)
	s.diag.Info("log interceptor installed")
	return nil
}

// Uninstall detaches the session from its source. The collected trace stays
// intact; tracking can resume with another Install.
func (s *Session) Uninstall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.logger.Printf("retrace: interceptor removed (session %s)", s.id)
	s.diag.Info("log interceptor removed")
}

// FinishTracking closes the open step, freezes the trace, and exports the
// artifacts when an output directory is configured. It returns the session
// summary; export failures come back as a non-nil error but never discard the
// in-memory trace. Finishing twice returns the same summary.
func (s *Session) FinishTracking() (*export.SummaryDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return s.summary, nil
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	s.steps.Finish()
	end := s.steps.LastSeen()
	if end.IsZero() {
		end = time.Now()
	}
	s.model.EndTime = &end
	s.model.AddEvent(timeline.Event{
		Title:     "Tracking finished",
		Icon:      "⏹️",
		Timestamp: end,
	})
	s.model.Freeze()
	s.finished = true

	s.summary = s.summaryLocked()

	var errs []error
	if err := s.flushUnknownLocked(); err != nil {
		errs = append(errs, err)
	}
	if s.unknownSink != nil {
		if err := s.unknownSink.Close(); err != nil {
			errs = append(errs, err)
		}
		s.unknownSink = nil
	}
	if s.exporter != nil {
		if err := s.exporter.WriteTimeline(s.timelineDocumentLocked()); err != nil {
			errs = append(errs, err)
		}
		if err := s.exporter.WriteThinking(s.thoughts.Records()); err != nil {
			errs = append(errs, err)
		}
		if err := s.exporter.WriteSummary(s.summary); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logger.Printf("retrace: export finished with warnings: %v", err)
		s.diag.Warning("export finished with warnings: %v", err)
		return s.summary, err
	}
	if s.exporter != nil {
		s.logger.Printf("retrace: artifacts written to %s", s.exporter.Dir())
	}
	return s.summary, nil
}

// Finished reports whether the session was finalized.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// GetTimeline returns the reconstructed steps sorted ascending by number.
func (s *Session) GetTimeline() []timeline.StepRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Flatten()
}

// GetThinkingLogs returns every recorded thought in arrival order.
func (s *Session) GetThinkingLogs() []thought.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thoughts.Records()
}

// GetUnknownMessages returns the retained unrecognized lines.
func (s *Session) GetUnknownMessages() []timeline.UnknownLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Unknown()
}

// GetThoughtsSummary returns aggregate thought statistics.
func (s *Session) GetThoughtsSummary() thought.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thoughts.Summarize()
}

// GetStepsSummary returns aggregate step statistics.
func (s *Session) GetStepsSummary() timeline.StepsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.SummarizeSteps()
}

// GetLLMStats returns a snapshot of the accumulated LLM usage. The copy is
// independent of the live aggregate, which the interceptor keeps mutating.
func (s *Session) GetLLMStats() *llmstats.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.llm.Snapshot()
}

// Events returns the standalone timeline events in arrival order.
func (s *Session) Events() []timeline.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Events()
}

// SaveTimeline writes the current timeline document to an explicit path,
// independent of the configured output directory.
func (s *Session) SaveTimeline(path string) error {
	s.mu.Lock()
	doc := s.timelineDocumentLocked()
	s.mu.Unlock()
	return export.WriteJSON(path, doc)
}

// timelineDocumentLocked assembles the timeline.json shape. Callers hold mu.
func (s *Session) timelineDocumentLocked() *export.TimelineDocument {
	return &export.TimelineDocument{
		Title:      s.model.Title,
		Prompt:     s.model.Prompt,
		SessionID:  s.id,
		StartTime:  s.model.StartTime,
		EndTime:    s.model.EndTime,
		TotalSteps: s.model.StepCount(),
		Events:     s.model.Events(),
		Timeline:   s.model.Flatten(),
	}
}

// summaryLocked assembles the summary document. Callers hold mu.
func (s *Session) summaryLocked() *export.SummaryDocument {
	doc := &export.SummaryDocument{
		Thoughts: s.thoughts.Summarize(),
		Steps:    s.model.SummarizeSteps(),
		Diagnostics: export.Diagnostics{
			UnknownRetained: len(s.model.Unknown()),
			UnknownDropped:  s.model.DroppedUnknown(),
		},
	}
	sum := doc.Thoughts
	doc.Diagnostics.ThoughtsSeen = sum.Detected
	doc.Diagnostics.ThoughtsKept = sum.Processed
	if !s.llm.Empty() {
		doc.LLM = s.llm
	}
	return doc
}

// maybeFlushLocked persists newly retained unrecognized lines when the flush
// interval has elapsed. Callers hold mu.
func (s *Session) maybeFlushLocked(now time.Time) {
	if s.exporter == nil || s.flushInterval <= 0 {
		return
	}
	if now.Sub(s.lastFlush) < s.flushInterval {
		return
	}
	s.lastFlush = now
	if err := s.flushUnknownLocked(); err != nil {
		// Persistence of unknowns is best effort; the line path goes on.
		s.diag.Warning("failed to persist unrecognized lines: %v", err)
	}
}

// flushUnknownLocked appends unrecognized lines not yet persisted to the
// JSONL sink, opening it on first use. Callers hold mu.
func (s *Session) flushUnknownLocked() error {
	if s.exporter == nil {
		return nil
	}
	unknown := s.model.Unknown()
	if s.flushed >= len(unknown) {
		return nil
	}

	if s.unknownSink == nil {
		sink, err := export.NewJSONLSink(filepath.Join(s.exporter.Dir(), export.UnknownFilename))
		if err != nil {
			return err
		}
		s.unknownSink = sink
	}
	for _, u := range unknown[s.flushed:] {
		if err := s.unknownSink.Write(u); err != nil {
			return err
		}
		s.flushed++
	}
	return s.unknownSink.Flush()
}
