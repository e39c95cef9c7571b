package pattern

import (
	"testing"
)

func TestMatchClassification(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		line string
		kind Kind
		step int
		text string
	}{
		{"step marker with glyph", "📍 Step 3", KindStepStart, 3, ""},
		{"step marker without glyph", "Step 3", KindStepStart, 3, ""},
		{"step start keyword", "Step 1 start", KindStepStart, 1, ""},
		{"step with colon", "Step 7: navigate to page", KindStepStart, 7, ""},
		{"step with dash", "Step 2 - fill the form", KindStepStart, 2, ""},
		{"begin step", "Begin Step 4", KindStepStart, 4, ""},
		{"z2b step", "Z2B Step 5", KindStepStart, 5, ""},
		{"step completed", "Step 3 completed", KindStepEnd, 3, ""},
		{"step completed with glyph", "✅ Step 3 completed", KindStepEnd, 3, ""},
		{"z2b step completed", "Z2B Step 6 completed", KindStepEnd, 6, ""},
		{"eval with glyph", "👍 Eval: Success - clicked the button", KindThought, 0, "Success - clicked the button"},
		{"eval plain", "Evaluation: Success - done", KindThought, 0, "Success - done"},
		{"eval short", "Eval: looks wrong", KindThought, 0, "looks wrong"},
		{"memory with glyph", "🧠 Memory: at home page", KindThought, 0, "at home page"},
		{"memory plain", "Memory: at home page", KindThought, 0, "at home page"},
		{"memory prose", "I remember that the cart was empty", KindThought, 0, "the cart was empty"},
		{"next goal with glyph", "🎯 Next goal: click search", KindThought, 0, "click search"},
		{"next goal plain", "Next goal: click search", KindThought, 0, "click search"},
		{"current goal", "Current goal: open settings", KindThought, 0, "open settings"},
		{"thinking", "Thinking: maybe scroll down", KindThought, 0, "maybe scroll down"},
		{"thought glyph", "💭 the page is slow", KindThought, 0, "the page is slow"},
		{"action", `Action: {"type":"click","selector":"#btn"}`, KindAction, 0, `{"type":"click","selector":"#btn"}`},
		{"action with glyph", "⚡ Action: scroll down", KindAction, 0, "scroll down"},
		{"screenshot", "📸 Screenshot captured", KindScreenshot, 0, ""},
		{"screenshot with path", "Screenshot: step_3.png", KindScreenshot, 0, "step_3.png"},
		{"llm cost", "Estimated cost: $0.0042", KindLLMCost, 0, "0.0042"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := reg.Match(tc.line)
			if !ok {
				t.Fatalf("expected %q to match", tc.line)
			}
			if m.Kind != tc.kind {
				t.Errorf("kind = %q, want %q", m.Kind, tc.kind)
			}
			if m.Step != tc.step {
				t.Errorf("step = %d, want %d", m.Step, tc.step)
			}
			if m.Text != tc.text {
				t.Errorf("text = %q, want %q", m.Text, tc.text)
			}
		})
	}
}

func TestMatchUnrecognized(t *testing.T) {
	reg := NewRegistry()

	lines := []string{
		"INFO  starting browser session",
		"random noise that matches nothing",
		"",
	}
	for _, line := range lines {
		if m, ok := reg.Match(line); ok {
			t.Errorf("expected %q not to match, got rule %q", line, m.Rule.Name)
		}
	}
}

func TestCompletionBeatsStart(t *testing.T) {
	// "Step 3 completed" must be a step_end, not a step_start, which only
	// holds while the completion rules sit above the start rules.
	reg := NewRegistry()
	m, ok := reg.Match("Step 3 completed")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Kind != KindStepEnd {
		t.Errorf("kind = %q, want %q", m.Kind, KindStepEnd)
	}
}

func TestFirstMatchWins(t *testing.T) {
	reg := NewEmptyRegistry()
	first := mustCompile("first", KindThought, "memory", `^Note: (.+)$`, 0, 1, 0)
	second := mustCompile("second", KindThought, "thought", `^Note: (.+)$`, 0, 1, 0)
	reg.Append(first, second)

	m, ok := reg.Match("Note: remember this")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Rule.Name != "first" {
		t.Errorf("matched rule %q, want %q", m.Rule.Name, "first")
	}
}

func TestEvalHintExtraction(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		line string
		hint string
	}{
		{"👍 Eval: Success - done", "👍"},
		{"👎 Eval: could not find the button", "👎"},
		{"Success - form submitted", "Success"},
		{"Evaluation: unclear outcome", ""},
	}
	for _, tc := range tests {
		m, ok := reg.Match(tc.line)
		if !ok {
			t.Fatalf("expected %q to match", tc.line)
		}
		if m.Hint != tc.hint {
			t.Errorf("hint for %q = %q, want %q", tc.line, m.Hint, tc.hint)
		}
	}
}

func TestMalformedStepNumberFallsThrough(t *testing.T) {
	reg := NewEmptyRegistry()
	// Step group points at a non-numeric capture; the rule must be skipped
	// instead of producing a bogus match.
	reg.Append(mustCompile("bad", KindStepStart, "", `^Step (\w+)$`, 1, 0, 0))

	if _, ok := reg.Match("Step abc"); ok {
		t.Error("expected non-numeric step capture to fall through")
	}
}
