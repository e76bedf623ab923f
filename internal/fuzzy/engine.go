package fuzzy

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// NoRuleFiredError is returned when no rule's antecedents have nonzero
// membership for a given input. It indicates an incomplete rule base or an
// out-of-domain input and is a fatal configuration error, never silently
// defaulted.
type NoRuleFiredError struct {
	Inputs map[string]float64
}

func (e *NoRuleFiredError) Error() string {
	parts := make([]string, 0, len(e.Inputs))
	for name, v := range e.Inputs {
		parts = append(parts, fmt.Sprintf("%s=%g", name, v))
	}
	sort.Strings(parts)
	return fmt.Sprintf("no fuzzy rule fired for inputs (%s)", strings.Join(parts, ", "))
}

// Engine runs Mamdani inference: fuzzification, min-AND rule evaluation,
// max aggregation of clipped consequents, centroid defuzzification
type Engine struct {
	inputs     []*Variable
	output     *Variable
	rules      *RuleBase
	resolution int
}

// NewEngine validates the variables and rule base and builds an engine.
// resolution is the number of intervals used to discretize the output
// domain for the centroid computation.
func NewEngine(inputs []*Variable, output *Variable, rules *RuleBase, resolution int) (*Engine, error) {
	if resolution < 10 {
		resolution = 10
	}

	for _, v := range inputs {
		if err := v.CheckCoverage(resolution); err != nil {
			return nil, err
		}
	}
	if err := output.CheckCoverage(resolution); err != nil {
		return nil, err
	}
	if err := rules.CheckCompleteness(inputs, output); err != nil {
		return nil, err
	}

	return &Engine{
		inputs:     inputs,
		output:     output,
		rules:      rules,
		resolution: resolution,
	}, nil
}

// Score runs the full inference pipeline for one crisp input per variable
// and returns the defuzzified output. Deterministic and side-effect free.
func (e *Engine) Score(inputs map[string]float64) (float64, error) {
	// Fuzzification: membership degree per term per variable
	degrees := make([]map[string]float64, len(e.inputs))
	for i, v := range e.inputs {
		x, ok := inputs[v.Name]
		if !ok {
			return 0, fmt.Errorf("missing input for fuzzy variable %q", v.Name)
		}
		byTerm := make(map[string]float64, len(v.Terms))
		for j, d := range v.Fuzzify(x) {
			byTerm[v.Terms[j].Name] = d
		}
		degrees[i] = byTerm
	}

	// Rule evaluation: min-AND firing strength, max-OR per consequent term
	strengths := make([]float64, len(e.output.Terms))
	fired := false
	for _, r := range e.rules.Rules {
		strength := math.Inf(1)
		for i, v := range e.inputs {
			d := degrees[i][r.Antecedents[v.Name]]
			if d < strength {
				strength = d
			}
		}
		if strength <= 0 {
			continue
		}
		fired = true
		idx := e.output.TermIndex(r.Consequent)
		if strength > strengths[idx] {
			strengths[idx] = strength
		}
	}

	if !fired {
		return 0, &NoRuleFiredError{Inputs: inputs}
	}

	return e.defuzzify(strengths), nil
}

// defuzzify aggregates the clipped consequent shapes (max across terms) and
// reduces the resulting fuzzy set to its centroid over the discretized
// output domain
func (e *Engine) defuzzify(strengths []float64) float64 {
	span := e.output.Max - e.output.Min

	var num, den float64
	for i := 0; i <= e.resolution; i++ {
		x := e.output.Min + span*float64(i)/float64(e.resolution)

		var mu float64
		for j, t := range e.output.Terms {
			if strengths[j] == 0 {
				continue
			}
			m := t.Membership(x)
			if m > strengths[j] {
				m = strengths[j] // clip at firing strength
			}
			if m > mu {
				mu = m
			}
		}

		num += x * mu
		den += mu
	}

	if den == 0 {
		// Cannot happen once a rule fired and the output domain is covered,
		// but guard the division regardless
		return e.output.Min
	}
	return num / den
}

// OutputRange returns the declared output domain
func (e *Engine) OutputRange() (min, max float64) {
	return e.output.Min, e.output.Max
}
