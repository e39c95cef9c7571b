package pattern

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleSpec is the yaml shape for a user-supplied rule. Custom rules are
// appended after the builtin table, so they can only widen recognition,
// never pre-empt it.
type RuleSpec struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Label     string `yaml:"label,omitempty"`
	Pattern   string `yaml:"pattern"`
	StepGroup int    `yaml:"step_group,omitempty"`
	TextGroup int    `yaml:"text_group,omitempty"`
}

// ruleFile is the top-level yaml document.
type ruleFile struct {
	Rules []RuleSpec `yaml:"rules"`
}

// validKinds lists the kinds user rules may produce.
var validKinds = map[Kind]bool{
	KindAction:     true,
	KindStepStart:  true,
	KindStepEnd:    true,
	KindThought:    true,
	KindScreenshot: true,
}

// LoadRules reads custom rules from a yaml file.
func LoadRules(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := make([]*Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("custom_%d", i+1)
		}
		kind := Kind(spec.Kind)
		if !validKinds[kind] {
			return nil, fmt.Errorf("rule %q: unknown kind %q", spec.Name, spec.Kind)
		}
		if kind == KindStepStart || kind == KindStepEnd {
			if spec.StepGroup <= 0 {
				return nil, fmt.Errorf("rule %q: step rules require step_group", spec.Name)
			}
		}
		rule, err := compile(spec.Name, kind, spec.Label, spec.Pattern, spec.StepGroup, spec.TextGroup, 0)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
