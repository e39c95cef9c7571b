// Package pattern provides the ordered recognizer table used to classify raw
// log lines emitted by a browser-use agent. Rules are evaluated in a fixed
// priority order and the first match wins; a line that matches nothing is not
// an error, it is simply unrecognized.
package pattern

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind identifies what a matched line represents.
type Kind string

const (
	// KindAction is a line describing an operation the agent performed.
	KindAction Kind = "action"
	// KindStepStart is an explicit step-start marker.
	KindStepStart Kind = "step_start"
	// KindStepEnd is an explicit step-completion marker.
	KindStepEnd Kind = "step_end"
	// KindThought is a categorized reasoning fragment.
	KindThought Kind = "thought"
	// KindScreenshot is a standalone screenshot event.
	KindScreenshot Kind = "screenshot"
	// KindLLMRequest is an LLM request usage line.
	KindLLMRequest Kind = "llm_request"
	// KindLLMResponse is an LLM response usage line.
	KindLLMResponse Kind = "llm_response"
	// KindLLMCost is an LLM cost estimate line.
	KindLLMCost Kind = "llm_cost"
)

// Rule is a single recognizer: a compiled expression plus instructions for
// pulling the interesting capture groups out of a match.
type Rule struct {
	// Name identifies the rule in diagnostics.
	Name string
	// Kind is the category assigned to matching lines.
	Kind Kind
	// Label is the original-label hint recorded on thought matches
	// (e.g. "evaluation", "memory"). Empty for non-thought rules.
	Label string
	// Pattern is the compiled expression. Expressions tolerate the
	// decorative glyphs the agent sometimes prefixes and their absence.
	Pattern *regexp.Regexp
	// StepGroup is the 1-based capture group holding a step number, 0 if none.
	StepGroup int
	// TextGroup is the 1-based capture group holding extracted content, 0 if none.
	TextGroup int
	// HintGroup is the 1-based capture group holding a status glyph or word
	// (used to infer evaluation outcomes), 0 if none.
	HintGroup int
}

// Match is the result of a successful rule evaluation.
type Match struct {
	// Rule is the rule that matched.
	Rule *Rule
	// Kind mirrors Rule.Kind for convenience.
	Kind Kind
	// Label mirrors Rule.Label.
	Label string
	// Step is the extracted step number, 0 when the rule carries none.
	Step int
	// Text is the extracted content, empty when the rule carries none.
	Text string
	// Hint is the extracted status glyph or word, empty when absent.
	Hint string
	// Groups holds all submatches, including the full match at index 0,
	// for rules whose handlers need more than one capture.
	Groups []string
}

// Registry is an explicit ordered list of rules. It is deliberately a slice,
// never a map: evaluation priority must not depend on container iteration
// order.
type Registry struct {
	rules []*Rule
}

// NewRegistry returns a registry preloaded with the builtin rules.
func NewRegistry() *Registry {
	return &Registry{rules: builtinRules()}
}

// NewEmptyRegistry returns a registry with no rules.
func NewEmptyRegistry() *Registry {
	return &Registry{}
}

// Append adds rules after all existing ones, preserving priority order.
func (r *Registry) Append(rules ...*Rule) {
	r.rules = append(r.rules, rules...)
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Match evaluates the line against every rule in priority order and returns
// the first match. The second return value is false when no rule matched.
func (r *Registry) Match(line string) (*Match, bool) {
	for _, rule := range r.rules {
		groups := rule.Pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		m := &Match{
			Rule:   rule,
			Kind:   rule.Kind,
			Label:  rule.Label,
			Groups: groups,
		}
		if rule.StepGroup > 0 && rule.StepGroup < len(groups) {
			n, err := strconv.Atoi(groups[rule.StepGroup])
			if err != nil {
				// A rule whose step group matched non-digits is malformed;
				// treat the line as unrecognized rather than guessing.
				continue
			}
			m.Step = n
		}
		if rule.TextGroup > 0 && rule.TextGroup < len(groups) {
			m.Text = groups[rule.TextGroup]
		}
		if rule.HintGroup > 0 && rule.HintGroup < len(groups) {
			m.Hint = groups[rule.HintGroup]
		}
		return m, true
	}
	return nil, false
}

// compile builds a rule from a raw expression, returning an error for invalid
// expressions so callers can surface bad user-supplied rules.
func compile(name string, kind Kind, label, expr string, stepGroup, textGroup, hintGroup int) (*Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("rule %q: invalid pattern: %w", name, err)
	}
	return &Rule{
		Name:      name,
		Kind:      kind,
		Label:     label,
		Pattern:   re,
		StepGroup: stepGroup,
		TextGroup: textGroup,
		HintGroup: hintGroup,
	}, nil
}

// mustCompile is compile for the builtin table, panicking on programmer error.
func mustCompile(name string, kind Kind, label, expr string, stepGroup, textGroup, hintGroup int) *Rule {
	r, err := compile(name, kind, label, expr, stepGroup, textGroup, hintGroup)
	if err != nil {
		panic(err)
	}
	return r
}
