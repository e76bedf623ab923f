package fuzzy

import (
	"encoding/json"
	"fmt"
	"os"
)

// Input variable names of the vulnerability engine
const (
	VarCondition = "condition"
	VarAge       = "age"
	VarMaterial  = "material"
	VarHealth    = "health"
)

// TermSpec is the serializable description of a linguistic term
type TermSpec struct {
	Name   string    `json:"name"`
	Shape  string    `json:"shape"`
	Params []float64 `json:"params"`
}

// VariableSpec is the serializable description of a fuzzy variable
type VariableSpec struct {
	Name  string     `json:"name"`
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Terms []TermSpec `json:"terms"`
}

// Calibration is the study-specific configuration of the vulnerability
// engine: term shapes and the rule base are calibration inputs, not code
type Calibration struct {
	Inputs     []VariableSpec `json:"inputs"`
	Output     VariableSpec   `json:"output"`
	Rules      []Rule         `json:"rules"`
	Resolution int            `json:"resolution"`
}

// LoadCalibration reads a calibration from a JSON file
func LoadCalibration(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fuzzy calibration: %w", err)
	}

	var cal Calibration
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("failed to parse fuzzy calibration: %w", err)
	}

	return &cal, nil
}

// Build compiles the calibration into an inference engine, validating
// membership shapes, domain coverage and rule-base completeness
func (c *Calibration) Build() (*Engine, error) {
	inputs := make([]*Variable, len(c.Inputs))
	for i, spec := range c.Inputs {
		v, err := buildVariable(spec)
		if err != nil {
			return nil, err
		}
		inputs[i] = v
	}

	output, err := buildVariable(c.Output)
	if err != nil {
		return nil, err
	}

	return NewEngine(inputs, output, &RuleBase{Rules: c.Rules}, c.Resolution)
}

func buildVariable(spec VariableSpec) (*Variable, error) {
	terms := make([]Term, len(spec.Terms))
	for i, t := range spec.Terms {
		mf, err := MembershipSpec{Shape: t.Shape, Params: t.Params}.Build()
		if err != nil {
			return nil, fmt.Errorf("variable %q term %q: %w", spec.Name, t.Name, err)
		}
		terms[i] = Term{Name: t.Name, Membership: mf}
	}
	return NewVariable(spec.Name, spec.Min, spec.Max, terms)
}

// DefaultCalibration returns the shipped calibration: condition on an
// ordinal 1-5 scale (1 = very good), age in years, material on an ordinal
// robustness scale 1-3 (1 = robust), health index on [0,1] where higher
// means more vulnerable. The rule base enumerates all 27 antecedent
// combinations.
func DefaultCalibration() *Calibration {
	return &Calibration{
		Inputs: []VariableSpec{
			{
				Name: VarCondition, Min: 1, Max: 5,
				Terms: []TermSpec{
					{Name: "good", Shape: ShapeTriangular, Params: []float64{1, 1, 3}},
					{Name: "moderate", Shape: ShapeTriangular, Params: []float64{1, 3, 5}},
					{Name: "poor", Shape: ShapeTriangular, Params: []float64{3, 5, 5}},
				},
			},
			{
				Name: VarAge, Min: 0, Max: 100,
				Terms: []TermSpec{
					{Name: "new", Shape: ShapeTrapezoidal, Params: []float64{0, 0, 15, 35}},
					{Name: "midlife", Shape: ShapeTriangular, Params: []float64{15, 35, 55}},
					{Name: "old", Shape: ShapeTrapezoidal, Params: []float64{35, 55, 100, 100}},
				},
			},
			{
				Name: VarMaterial, Min: 1, Max: 3,
				Terms: []TermSpec{
					{Name: "robust", Shape: ShapeTriangular, Params: []float64{1, 1, 2}},
					{Name: "standard", Shape: ShapeTriangular, Params: []float64{1, 2, 3}},
					{Name: "fragile", Shape: ShapeTriangular, Params: []float64{2, 3, 3}},
				},
			},
		},
		Output: VariableSpec{
			Name: VarHealth, Min: 0, Max: 1,
			Terms: []TermSpec{
				{Name: "low", Shape: ShapeTrapezoidal, Params: []float64{0, 0, 0.2, 0.4}},
				{Name: "medium", Shape: ShapeTriangular, Params: []float64{0.3, 0.5, 0.7}},
				{Name: "high", Shape: ShapeTrapezoidal, Params: []float64{0.6, 0.8, 1, 1}},
			},
		},
		Rules:      defaultRules(),
		Resolution: 200,
	}
}

// defaultRules enumerates the expert rule table over condition x age x
// material. Condition dominates, age and material shift the outcome.
func defaultRules() []Rule {
	table := []struct {
		condition, age, material, health string
	}{
		{"good", "new", "robust", "low"},
		{"good", "new", "standard", "low"},
		{"good", "new", "fragile", "low"},
		{"good", "midlife", "robust", "low"},
		{"good", "midlife", "standard", "low"},
		{"good", "midlife", "fragile", "medium"},
		{"good", "old", "robust", "low"},
		{"good", "old", "standard", "medium"},
		{"good", "old", "fragile", "medium"},
		{"moderate", "new", "robust", "low"},
		{"moderate", "new", "standard", "medium"},
		{"moderate", "new", "fragile", "medium"},
		{"moderate", "midlife", "robust", "medium"},
		{"moderate", "midlife", "standard", "medium"},
		{"moderate", "midlife", "fragile", "medium"},
		{"moderate", "old", "robust", "medium"},
		{"moderate", "old", "standard", "medium"},
		{"moderate", "old", "fragile", "high"},
		{"poor", "new", "robust", "medium"},
		{"poor", "new", "standard", "medium"},
		{"poor", "new", "fragile", "high"},
		{"poor", "midlife", "robust", "medium"},
		{"poor", "midlife", "standard", "high"},
		{"poor", "midlife", "fragile", "high"},
		{"poor", "old", "robust", "high"},
		{"poor", "old", "standard", "high"},
		{"poor", "old", "fragile", "high"},
	}

	rules := make([]Rule, len(table))
	for i, row := range table {
		rules[i] = Rule{
			Antecedents: map[string]string{
				VarCondition: row.condition,
				VarAge:       row.age,
				VarMaterial:  row.material,
			},
			Consequent: row.health,
		}
	}
	return rules
}
