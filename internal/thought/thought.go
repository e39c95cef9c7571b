// Package thought normalizes, categorizes, and deduplicates the reasoning
// fragments recovered from agent log lines.
package thought

import (
	"fmt"
	"strings"
	"time"
)

// Category is the fixed set of thought categories.
type Category string

const (
	// CategoryEvaluation is an assessment of the previous goal.
	CategoryEvaluation Category = "evaluation"
	// CategoryMemory is retained state the agent considers important.
	CategoryMemory Category = "memory"
	// CategoryNextGoal is the agent's stated next objective.
	CategoryNextGoal Category = "next_goal"
	// CategoryGeneric is any reasoning fragment that fits no other category.
	CategoryGeneric Category = "generic"
)

// Categories returns all categories in a stable order.
func Categories() []Category {
	return []Category{CategoryEvaluation, CategoryMemory, CategoryNextGoal, CategoryGeneric}
}

// Record is a single captured reasoning fragment. The original label is kept
// for audit even after normalization.
type Record struct {
	Step      int       `json:"step"`
	Category  Category  `json:"category"`
	Text      string    `json:"text"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// NormalizeLabel folds heterogeneous source labels into a Category.
func NormalizeLabel(label string) Category {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "evaluation", "eval", "assessment", "🔍":
		return CategoryEvaluation
	case "memory", "remember", "recall", "🧠", "💾":
		return CategoryMemory
	case "next_goal", "goal", "next goal", "objective", "🎯":
		return CategoryNextGoal
	default:
		return CategoryGeneric
	}
}

// NormalizeText canonicalizes thought text for storage and deduplication:
// surrounding whitespace is stripped and internal runs collapse to one space.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Store holds the ordered list of recorded thoughts plus running counters.
// Counters are maintained at write time so summaries never re-traverse the
// timeline. Store is not safe for concurrent use; the owning session
// serializes access.
type Store struct {
	records []Record
	seen    map[string]struct{}
	counts  map[Category]int

	// detected counts every thought-shaped line offered to the store;
	// processed counts the ones actually recorded. The difference is the
	// duplicate count, surfaced as a diagnostic.
	detected  int
	processed int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		seen:   make(map[string]struct{}),
		counts: make(map[Category]int),
	}
}

// Add normalizes and records a thought. It returns the stored record and true,
// or a zero record and false when the thought is a duplicate within its step
// or normalizes to nothing.
func (s *Store) Add(step int, label, text string, ts time.Time) (Record, bool) {
	s.detected++

	normalized := NormalizeText(text)
	if normalized == "" {
		return Record{}, false
	}
	category := NormalizeLabel(label)

	key := dedupeKey(step, category, normalized)
	if _, dup := s.seen[key]; dup {
		return Record{}, false
	}
	s.seen[key] = struct{}{}

	rec := Record{
		Step:      step,
		Category:  category,
		Text:      normalized,
		Label:     label,
		Timestamp: ts,
	}
	s.records = append(s.records, rec)
	s.counts[category]++
	s.processed++
	return rec, true
}

// Records returns the recorded thoughts in arrival order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Count returns the running count for one category.
func (s *Store) Count(c Category) int {
	return s.counts[c]
}

// Summary holds aggregate thought statistics.
type Summary struct {
	Total        int                  `json:"total"`
	Detected     int                  `json:"detected"`
	Processed    int                  `json:"processed"`
	Duplicates   int                  `json:"duplicates"`
	Counts       map[Category]int     `json:"counts"`
	Distribution map[Category]float64 `json:"distribution"`
	StepsWith    int                  `json:"steps_with_thoughts"`
}

// Summarize computes the aggregate view from the running counters.
func (s *Store) Summarize() Summary {
	counts := make(map[Category]int, len(Categories()))
	distribution := make(map[Category]float64, len(Categories()))
	for _, c := range Categories() {
		counts[c] = s.counts[c]
	}
	if s.processed > 0 {
		for _, c := range Categories() {
			distribution[c] = float64(counts[c]) / float64(s.processed)
		}
	}

	steps := make(map[int]struct{})
	for _, rec := range s.records {
		steps[rec.Step] = struct{}{}
	}

	return Summary{
		Total:        s.processed,
		Detected:     s.detected,
		Processed:    s.processed,
		Duplicates:   s.detected - s.processed,
		Counts:       counts,
		Distribution: distribution,
		StepsWith:    len(steps),
	}
}

// dedupeKey builds the (step, category, normalized text) identity for a thought.
func dedupeKey(step int, category Category, normalized string) string {
	return fmt.Sprintf("%d|%s|%s", step, category, strings.ToLower(normalized))
}
