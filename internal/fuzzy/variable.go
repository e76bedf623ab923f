package fuzzy

import "fmt"

// Term is one linguistic term of a fuzzy variable with its compiled
// membership function
type Term struct {
	Name       string
	Membership MembershipFunc
}

// Variable is a fuzzy variable: an ordered set of linguistic terms over a
// declared input domain
type Variable struct {
	Name   string
	Min    float64
	Max    float64
	Terms  []Term
	byName map[string]int
}

// NewVariable builds a variable and indexes its terms by name
func NewVariable(name string, min, max float64, terms []Term) (*Variable, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("variable %q declares no terms", name)
	}
	if min >= max {
		return nil, fmt.Errorf("variable %q has an empty domain [%g, %g]", name, min, max)
	}

	byName := make(map[string]int, len(terms))
	for i, t := range terms {
		if _, dup := byName[t.Name]; dup {
			return nil, fmt.Errorf("variable %q declares term %q twice", name, t.Name)
		}
		byName[t.Name] = i
	}

	return &Variable{Name: name, Min: min, Max: max, Terms: terms, byName: byName}, nil
}

// Fuzzify maps a crisp input to the degree of membership in every term.
// The returned slice is indexed like Terms.
func (v *Variable) Fuzzify(x float64) []float64 {
	degrees := make([]float64, len(v.Terms))
	for i, t := range v.Terms {
		degrees[i] = t.Membership(x)
	}
	return degrees
}

// TermIndex returns the index of a term by name, or -1 if unknown
func (v *Variable) TermIndex(name string) int {
	i, ok := v.byName[name]
	if !ok {
		return -1
	}
	return i
}

// CheckCoverage verifies that every point of the declared domain has
// nonzero membership in at least one term. Overlapping terms are allowed;
// gaps are a configuration error. The domain is sampled at the given
// number of steps.
func (v *Variable) CheckCoverage(steps int) error {
	if steps < 2 {
		steps = 2
	}

	span := v.Max - v.Min
	for i := 0; i <= steps; i++ {
		x := v.Min + span*float64(i)/float64(steps)
		covered := false
		for _, t := range v.Terms {
			if t.Membership(x) > 0 {
				covered = true
				break
			}
		}
		if !covered {
			return fmt.Errorf("variable %q has no term covering input %g", v.Name, x)
		}
	}
	return nil
}
