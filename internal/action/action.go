// Package action classifies the operation descriptions a browser-use agent
// writes to its log. Lines may carry an embedded JSON payload describing the
// operation; the payload is frequently malformed, and parsing failure is
// never fatal: the action is still recorded with the raw text.
package action

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Type classifies an action.
type Type string

const (
	// TypeNavigation is a page navigation (URL change).
	TypeNavigation Type = "navigation"
	// TypeClick is a pointer interaction with an element.
	TypeClick Type = "click"
	// TypeForm is text entry or form manipulation.
	TypeForm Type = "form"
	// TypeExtraction is content extraction from the page.
	TypeExtraction Type = "extraction"
	// TypeGeneric is any action that could not be classified further.
	TypeGeneric Type = "generic"
)

// Record is a single classified action.
type Record struct {
	Step int  `json:"step"`
	Type Type `json:"type"`
	// Declared reports whether the payload named its own type, as opposed
	// to the type being inferred from the payload's key set.
	Declared bool `json:"declared"`
	// Payload is the parsed JSON object, nil when parsing failed.
	Payload map[string]any `json:"payload,omitempty"`
	// Raw is the original action text, always retained.
	Raw         string    `json:"raw"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Timestamp   time.Time `json:"timestamp"`
}

// inferenceRule maps a payload key set onto a Type. Rules are evaluated in
// order and the first rule with any matching key wins.
type inferenceRule struct {
	typ  Type
	keys []string
}

// inferenceTable is deliberately an ordered slice: navigation keys beat click
// keys, click keys beat form keys, and so on, regardless of payload shape.
var inferenceTable = []inferenceRule{
	{TypeNavigation, []string{"url", "href", "navigate", "go_to_url"}},
	{TypeClick, []string{"selector", "click", "element", "xpath", "index"}},
	{TypeForm, []string{"input", "value", "fields", "form", "input_text"}},
	{TypeExtraction, []string{"extract", "extract_content", "content", "data"}},
}

// icons maps each type to its display glyph.
var icons = map[Type]string{
	TypeNavigation: "🌐",
	TypeClick:      "🖱️",
	TypeForm:       "⌨️",
	TypeExtraction: "📋",
	TypeGeneric:    "⚙️",
}

// Parse classifies one action line and binds it to the given step. It never
// fails: a line whose embedded JSON cannot be parsed produces a generic
// record carrying the raw text.
func Parse(text string, step int, ts time.Time) Record {
	rec := Record{
		Step:      step,
		Type:      TypeGeneric,
		Raw:       strings.TrimSpace(text),
		Timestamp: ts,
	}

	payload, ok := extractJSON(rec.Raw)
	if ok {
		rec.Payload = payload
		rec.Type, rec.Declared = classify(payload)
	}

	rec.Description = describe(rec)
	rec.Icon = icons[rec.Type]
	return rec
}

// extractJSON finds and parses an embedded JSON object in the text. It
// accepts both bare objects and objects surrounded by prose.
func extractJSON(text string) (map[string]any, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, false
	}
	return payload, true
}

// classify determines the action type from a parsed payload. A payload that
// declares its own type wins; otherwise the key-set inference table applies.
func classify(payload map[string]any) (Type, bool) {
	if declared, ok := payload["type"].(string); ok {
		switch Type(strings.ToLower(declared)) {
		case TypeNavigation, TypeClick, TypeForm, TypeExtraction, TypeGeneric:
			return Type(strings.ToLower(declared)), true
		default:
			// Unknown declared types still count as declared; record them
			// as generic rather than inventing a category.
			return TypeGeneric, true
		}
	}

	for _, rule := range inferenceTable {
		for _, key := range rule.keys {
			if _, present := payload[key]; present {
				return rule.typ, false
			}
		}
	}
	return TypeGeneric, false
}

// describe builds a short human-readable description for display.
func describe(rec Record) string {
	switch rec.Type {
	case TypeNavigation:
		if target := payloadString(rec.Payload, "url", "href", "go_to_url"); target != "" {
			return "Navigate to " + target
		}
		return "Navigate"
	case TypeClick:
		if target := payloadString(rec.Payload, "selector", "element", "xpath", "index"); target != "" {
			return "Click " + target
		}
		return "Click"
	case TypeForm:
		if target := payloadString(rec.Payload, "input", "input_text", "value"); target != "" {
			return "Enter " + truncate(target, 60)
		}
		return "Fill form"
	case TypeExtraction:
		return "Extract content"
	default:
		if rec.Payload != nil {
			return "Action: " + summarizeKeys(rec.Payload)
		}
		return truncate(rec.Raw, 80)
	}
}

// payloadString returns the first present key rendered as a string.
func payloadString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := payload[key]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			return s
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// summarizeKeys renders a sorted key list for generic payload descriptions.
func summarizeKeys(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
