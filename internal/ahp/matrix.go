package ahp

import (
	"fmt"
	"math"
)

// Saaty preference scale bounds
const (
	ScaleMin = 1.0 / 9.0
	ScaleMax = 9.0
)

// reciprocityTolerance allows for rounding in expert-elicited entries
const reciprocityTolerance = 1e-6

// PairwiseMatrix is a square reciprocal comparison matrix over criteria,
// entries on the 1-9 preference scale, diagonal fixed at 1 and
// entry(i,j) = 1/entry(j,i)
type PairwiseMatrix struct {
	Criteria []string
	Entries  [][]float64
}

// NewPairwiseMatrix validates and wraps a comparison matrix. The matrix
// must be square over the given criteria, have a unit diagonal, be
// reciprocal, and keep every entry on the Saaty scale.
func NewPairwiseMatrix(criteria []string, entries [][]float64) (*PairwiseMatrix, error) {
	n := len(criteria)
	if n < 2 {
		return nil, fmt.Errorf("pairwise matrix needs at least 2 criteria, got %d", n)
	}
	if len(entries) != n {
		return nil, fmt.Errorf("pairwise matrix has %d rows, want %d", len(entries), n)
	}

	for i := 0; i < n; i++ {
		if len(entries[i]) != n {
			return nil, fmt.Errorf("pairwise matrix row %d has %d columns, want %d", i, len(entries[i]), n)
		}
		if math.Abs(entries[i][i]-1) > reciprocityTolerance {
			return nil, fmt.Errorf("pairwise matrix diagonal entry (%d,%d) is %g, must be 1", i, i, entries[i][i])
		}
		for j := 0; j < n; j++ {
			v := entries[i][j]
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("pairwise matrix entry (%s,%s) is %g, must be positive", criteria[i], criteria[j], v)
			}
			if v < ScaleMin-reciprocityTolerance || v > ScaleMax+reciprocityTolerance {
				return nil, fmt.Errorf("pairwise matrix entry (%s,%s) is %g, outside the 1/9..9 scale", criteria[i], criteria[j], v)
			}
			if j > i {
				if math.Abs(entries[i][j]*entries[j][i]-1) > reciprocityTolerance*10 {
					return nil, fmt.Errorf("pairwise matrix is not reciprocal at (%s,%s): %g vs %g",
						criteria[i], criteria[j], entries[i][j], entries[j][i])
				}
			}
		}
	}

	return &PairwiseMatrix{Criteria: criteria, Entries: entries}, nil
}

// Dimension returns the number of criteria
func (m *PairwiseMatrix) Dimension() int {
	return len(m.Criteria)
}

// multiply computes Entries * v
func (m *PairwiseMatrix) multiply(v []float64) []float64 {
	n := m.Dimension()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += m.Entries[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}
