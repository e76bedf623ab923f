package fuzzy

import "fmt"

// Membership function shape identifiers
const (
	ShapeTriangular  = "triangular"
	ShapeTrapezoidal = "trapezoidal"
)

// MembershipFunc maps a crisp input to a degree of membership in [0,1]
type MembershipFunc func(x float64) float64

// Triangular builds a triangular membership function with feet at a and c
// and peak at b (a <= b <= c). Degenerate edges (a == b or b == c) behave
// as vertical shoulders.
func Triangular(a, b, c float64) MembershipFunc {
	return func(x float64) float64 {
		switch {
		case x < a || x > c:
			return 0
		case x == b:
			return 1
		case x < b:
			if b == a {
				return 1
			}
			return (x - a) / (b - a)
		default:
			if c == b {
				return 1
			}
			return (c - x) / (c - b)
		}
	}
}

// Trapezoidal builds a trapezoidal membership function with feet at a and d
// and plateau between b and c (a <= b <= c <= d)
func Trapezoidal(a, b, c, d float64) MembershipFunc {
	return func(x float64) float64 {
		switch {
		case x < a || x > d:
			return 0
		case x >= b && x <= c:
			return 1
		case x < b:
			if b == a {
				return 1
			}
			return (x - a) / (b - a)
		default:
			if d == c {
				return 1
			}
			return (d - x) / (d - c)
		}
	}
}

// MembershipSpec is the serializable description of a membership function
type MembershipSpec struct {
	Shape  string    `json:"shape"`  // triangular or trapezoidal
	Params []float64 `json:"params"` // [a,b,c] or [a,b,c,d]
}

// Build compiles the spec into a callable membership function
func (s MembershipSpec) Build() (MembershipFunc, error) {
	switch s.Shape {
	case ShapeTriangular:
		if len(s.Params) != 3 {
			return nil, fmt.Errorf("triangular membership requires 3 params, got %d", len(s.Params))
		}
		a, b, c := s.Params[0], s.Params[1], s.Params[2]
		if a > b || b > c {
			return nil, fmt.Errorf("triangular params must be ordered a <= b <= c, got %v", s.Params)
		}
		return Triangular(a, b, c), nil
	case ShapeTrapezoidal:
		if len(s.Params) != 4 {
			return nil, fmt.Errorf("trapezoidal membership requires 4 params, got %d", len(s.Params))
		}
		a, b, c, d := s.Params[0], s.Params[1], s.Params[2], s.Params[3]
		if a > b || b > c || c > d {
			return nil, fmt.Errorf("trapezoidal params must be ordered a <= b <= c <= d, got %v", s.Params)
		}
		return Trapezoidal(a, b, c, d), nil
	default:
		return nil, fmt.Errorf("unknown membership shape %q", s.Shape)
	}
}
