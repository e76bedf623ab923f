package normalize

import (
	"fmt"

	"github.com/floodgrid/substation-risk-go/internal/stats"
)

// Direction indicates how a raw criterion value relates to criticality
type Direction string

const (
	// Benefit means higher raw values are more critical
	Benefit Direction = "benefit"
	// Cost means lower raw values are more critical
	Cost Direction = "cost"
)

// DegenerateRangeError is returned when a criterion has zero variance
// across the study area (max == min), so min-max rescaling is undefined
type DegenerateRangeError struct {
	Criterion string
	Value     float64
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("criterion %q has a degenerate range (min == max == %g), cannot normalize", e.Criterion, e.Value)
}

// Range holds the observed (or fixed reference) min/max of a criterion
type Range struct {
	Min float64
	Max float64
}

// RangeOf computes the observed range of raw values for a criterion
func RangeOf(values []float64) Range {
	return Range{Min: stats.Min(values), Max: stats.Max(values)}
}

// MinMax rescales a raw criterion value onto [0,1] using the declared
// direction. Benefit criteria map min->0, max->1; cost criteria map
// min->1, max->0. Returns a DegenerateRangeError when the range is zero;
// the caller must substitute a configured constant instead of dividing.
func MinMax(criterion string, value float64, r Range, dir Direction) (float64, error) {
	span := r.Max - r.Min
	if span == 0 {
		return 0, &DegenerateRangeError{Criterion: criterion, Value: r.Min}
	}

	var v float64
	switch dir {
	case Cost:
		v = (r.Max - value) / span
	default:
		v = (value - r.Min) / span
	}

	return Clamp01(v), nil
}

// Clamp01 clips a value to the [0,1] interval
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
