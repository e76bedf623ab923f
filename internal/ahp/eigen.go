package ahp

import (
	"fmt"
	"math"
)

// Power-iteration bounds. A valid positive reciprocal matrix converges
// well inside these (Perron-Frobenius guarantees a unique dominant
// eigenvector), but the loop must be bounded regardless.
const (
	defaultMaxIterations = 200
	defaultTolerance     = 1e-10
)

// EigenSolutionError is returned when power iteration does not converge to
// a usable positive principal eigenvector within the iteration cap
type EigenSolutionError struct {
	Iterations int
	Residual   float64
}

func (e *EigenSolutionError) Error() string {
	return fmt.Sprintf("eigenvector computation did not converge after %d iterations (residual %g)", e.Iterations, e.Residual)
}

// principalEigen computes the principal eigenvector and eigenvalue of the
// matrix via normalize-and-multiply power iteration. The returned vector
// is normalized to sum to 1.
func principalEigen(m *PairwiseMatrix, maxIterations int, tolerance float64) ([]float64, float64, error) {
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}

	n := m.Dimension()
	v := make([]float64, n)
	for i := range v {
		v[i] = 1.0 / float64(n)
	}

	residual := math.Inf(1)
	for iter := 0; iter < maxIterations; iter++ {
		next := m.multiply(v)

		sum := 0.0
		for _, x := range next {
			sum += x
		}
		if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
			return nil, 0, &EigenSolutionError{Iterations: iter, Residual: residual}
		}
		for i := range next {
			next[i] /= sum
		}

		residual = 0
		for i := range next {
			if d := math.Abs(next[i] - v[i]); d > residual {
				residual = d
			}
		}
		v = next

		if residual < tolerance {
			lambda, err := principalEigenvalue(m, v)
			if err != nil {
				return nil, 0, err
			}
			return v, lambda, nil
		}
	}

	return nil, 0, &EigenSolutionError{Iterations: maxIterations, Residual: residual}
}

// principalEigenvalue estimates lambda-max as the mean of (Av)_i / v_i
func principalEigenvalue(m *PairwiseMatrix, v []float64) (float64, error) {
	av := m.multiply(v)

	var sum float64
	for i := range v {
		if v[i] <= 0 {
			return 0, &EigenSolutionError{Iterations: 0, Residual: math.Abs(v[i])}
		}
		sum += av[i] / v[i]
	}
	return sum / float64(len(v)), nil
}
