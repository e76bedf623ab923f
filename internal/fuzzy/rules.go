package fuzzy

import (
	"fmt"
	"sort"
	"strings"
)

// Rule maps one antecedent term per input variable to a consequent term on
// the output variable (AND conjunction across antecedents)
type Rule struct {
	Antecedents map[string]string `json:"if"`   // variable name -> term name
	Consequent  string            `json:"then"` // output term name
}

// RuleBase is the fixed, expert-authored set of inference rules
type RuleBase struct {
	Rules []Rule
}

// CheckCompleteness verifies that the rule base covers the full Cartesian
// product of the input variables' terms and references only declared terms.
// An enumerated mapping makes this check mechanical: every combination must
// appear exactly once.
func (rb *RuleBase) CheckCompleteness(inputs []*Variable, output *Variable) error {
	if len(rb.Rules) == 0 {
		return fmt.Errorf("rule base is empty")
	}

	seen := make(map[string]bool, len(rb.Rules))
	for i, r := range rb.Rules {
		if output.TermIndex(r.Consequent) < 0 {
			return fmt.Errorf("rule %d maps to unknown output term %q", i, r.Consequent)
		}
		if len(r.Antecedents) != len(inputs) {
			return fmt.Errorf("rule %d has %d antecedents, want one per variable (%d)", i, len(r.Antecedents), len(inputs))
		}

		key, err := comboKey(inputs, r.Antecedents)
		if err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if seen[key] {
			return fmt.Errorf("rule base maps combination %s more than once", key)
		}
		seen[key] = true
	}

	// Every combination of antecedent terms must be covered
	missing := missingCombos(inputs, seen)
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("rule base is incomplete, %d combinations uncovered (first: %s)", len(missing), missing[0])
	}

	return nil
}

func comboKey(inputs []*Variable, antecedents map[string]string) (string, error) {
	parts := make([]string, len(inputs))
	for i, v := range inputs {
		term, ok := antecedents[v.Name]
		if !ok {
			return "", fmt.Errorf("missing antecedent for variable %q", v.Name)
		}
		if v.TermIndex(term) < 0 {
			return "", fmt.Errorf("unknown term %q for variable %q", term, v.Name)
		}
		parts[i] = v.Name + "=" + term
	}
	return strings.Join(parts, ","), nil
}

func missingCombos(inputs []*Variable, seen map[string]bool) []string {
	var missing []string

	var walk func(i int, parts []string)
	walk = func(i int, parts []string) {
		if i == len(inputs) {
			key := strings.Join(parts, ",")
			if !seen[key] {
				missing = append(missing, key)
			}
			return
		}
		for _, t := range inputs[i].Terms {
			walk(i+1, append(parts, inputs[i].Name+"="+t.Name))
		}
	}
	walk(0, nil)

	return missing
}
