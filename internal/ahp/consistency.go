package ahp

import "fmt"

// ConsistencyThreshold is the accepted upper bound on the consistency
// ratio; judgments at or above it must be revised before weights are used
const ConsistencyThreshold = 0.10

// randomIndex is Saaty's published random consistency index by matrix
// dimension (index 0 and 1 are placeholders; CR is undefined below n=3
// and treated as perfectly consistent)
var randomIndex = []float64{0, 0, 0, 0.58, 0.90, 1.12, 1.24, 1.32, 1.41, 1.45, 1.49, 1.51, 1.53, 1.56, 1.57, 1.59}

// InconsistentJudgmentError is returned when the consistency ratio of a
// comparison matrix reaches the accepted threshold. This is a hard stop:
// downstream scores would be unreliable.
type InconsistentJudgmentError struct {
	CR        float64
	Dimension int
}

func (e *InconsistentJudgmentError) Error() string {
	return fmt.Sprintf("pairwise judgments are inconsistent: CR = %.4f >= %.2f for %d criteria, revise the matrix", e.CR, ConsistencyThreshold, e.Dimension)
}

// WeightReport carries the derived weight vector together with the
// consistency audit trail
type WeightReport struct {
	Criteria  []string  `json:"criteria"`
	Weights   []float64 `json:"weights"`
	LambdaMax float64   `json:"lambda_max"`
	CI        float64   `json:"consistency_index"`
	CR        float64   `json:"consistency_ratio"`
}

// DeriveWeights computes the principal eigenvector of the comparison
// matrix, normalizes it to sum to 1, and validates the consistency ratio.
// It fails with InconsistentJudgmentError when CR >= 0.10 and with
// EigenSolutionError when the iteration does not converge.
func DeriveWeights(m *PairwiseMatrix) (*WeightReport, error) {
	weights, lambda, err := principalEigen(m, defaultMaxIterations, defaultTolerance)
	if err != nil {
		return nil, err
	}

	n := m.Dimension()
	ci := (lambda - float64(n)) / float64(n-1)

	cr := 0.0
	if n >= 3 {
		if n >= len(randomIndex) {
			return nil, fmt.Errorf("no random index published for %d criteria", n)
		}
		cr = ci / randomIndex[n]
	}

	if cr >= ConsistencyThreshold {
		return nil, &InconsistentJudgmentError{CR: cr, Dimension: n}
	}

	return &WeightReport{
		Criteria:  m.Criteria,
		Weights:   weights,
		LambdaMax: lambda,
		CI:        ci,
		CR:        cr,
	}, nil
}
