package thought

import (
	"testing"
	"time"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected Category
	}{
		{"evaluation", CategoryEvaluation},
		{"Eval", CategoryEvaluation},
		{"assessment", CategoryEvaluation},
		{"memory", CategoryMemory},
		{"🧠", CategoryMemory},
		{"next_goal", CategoryNextGoal},
		{"goal", CategoryNextGoal},
		{"Next Goal", CategoryNextGoal},
		{"🎯", CategoryNextGoal},
		{"thought", CategoryGeneric},
		{"result", CategoryGeneric},
		{"", CategoryGeneric},
		{"anything else", CategoryGeneric},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			if got := NormalizeLabel(tc.label); got != tc.expected {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tc.label, got, tc.expected)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  at   home page ", "at home page"},
		{"single", "single"},
		{"\ttabs\tand\nnewlines\n", "tabs and newlines"},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := NormalizeText(tc.input); got != tc.expected {
			t.Errorf("NormalizeText(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestAddDeduplicatesWithinStep(t *testing.T) {
	s := NewStore()
	now := time.Now()

	if _, ok := s.Add(1, "evaluation", "Success - done", now); !ok {
		t.Fatal("first add should succeed")
	}
	if _, ok := s.Add(1, "evaluation", "Success - done", now.Add(time.Second)); ok {
		t.Error("identical thought within a step should be dropped")
	}
	// Whitespace variants normalize to the same dedupe key.
	if _, ok := s.Add(1, "evaluation", "  Success -   done ", now.Add(2*time.Second)); ok {
		t.Error("whitespace variant should be treated as a duplicate")
	}
	// The same text in a different step is a new thought.
	if _, ok := s.Add(2, "evaluation", "Success - done", now.Add(3*time.Second)); !ok {
		t.Error("same thought in a new step should be recorded")
	}
	// The same text in a different category is a new thought.
	if _, ok := s.Add(1, "memory", "Success - done", now.Add(4*time.Second)); !ok {
		t.Error("same text in a different category should be recorded")
	}

	if got := len(s.Records()); got != 3 {
		t.Errorf("expected 3 records, got %d", got)
	}
}

func TestAddDropsEmpty(t *testing.T) {
	s := NewStore()
	if _, ok := s.Add(1, "memory", "   ", time.Now()); ok {
		t.Error("whitespace-only thought should be dropped")
	}
	if got := len(s.Records()); got != 0 {
		t.Errorf("expected no records, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	s := NewStore()
	now := time.Now()

	s.Add(1, "evaluation", "Success - done", now)
	s.Add(1, "memory", "at home page", now)
	s.Add(1, "next_goal", "click search", now)
	s.Add(2, "next_goal", "submit form", now)
	s.Add(2, "next_goal", "submit form", now) // duplicate

	sum := s.Summarize()
	if sum.Total != 4 {
		t.Errorf("Total = %d, want 4", sum.Total)
	}
	if sum.Detected != 5 {
		t.Errorf("Detected = %d, want 5", sum.Detected)
	}
	if sum.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", sum.Duplicates)
	}
	if sum.Counts[CategoryNextGoal] != 2 {
		t.Errorf("next_goal count = %d, want 2", sum.Counts[CategoryNextGoal])
	}
	if sum.StepsWith != 2 {
		t.Errorf("StepsWith = %d, want 2", sum.StepsWith)
	}
	if got := sum.Distribution[CategoryEvaluation]; got != 0.25 {
		t.Errorf("evaluation distribution = %v, want 0.25", got)
	}
}

func TestRecordKeepsOriginalLabel(t *testing.T) {
	s := NewStore()
	rec, ok := s.Add(1, "Eval", "Success - done", time.Now())
	if !ok {
		t.Fatal("add should succeed")
	}
	if rec.Label != "Eval" {
		t.Errorf("Label = %q, want original %q", rec.Label, "Eval")
	}
	if rec.Category != CategoryEvaluation {
		t.Errorf("Category = %q, want %q", rec.Category, CategoryEvaluation)
	}
}
