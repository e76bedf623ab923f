package ahp

import (
	"errors"
	"fmt"
	"math"

	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/normalize"
)

// Engine applies AHP-derived weights to criterion values to produce the
// criticality (important index) score per substation
type Engine struct {
	criteria []models.Criterion
	report   *WeightReport

	// DegenerateFallback is substituted when a criterion has zero variance
	// across the study area and min-max rescaling is undefined
	DegenerateFallback float64
}

// NewEngine derives and validates the weight vector for the given criteria
// and comparison matrix. Matrix criteria must match the criteria list in
// name and order.
func NewEngine(criteria []models.Criterion, m *PairwiseMatrix) (*Engine, error) {
	if len(criteria) != m.Dimension() {
		return nil, fmt.Errorf("%d criteria but a %dx%d comparison matrix", len(criteria), m.Dimension(), m.Dimension())
	}
	for i, c := range criteria {
		if c.Name != m.Criteria[i] {
			return nil, fmt.Errorf("criterion %d is %q but matrix row %d is %q", i, c.Name, i, m.Criteria[i])
		}
	}

	report, err := DeriveWeights(m)
	if err != nil {
		return nil, err
	}

	return &Engine{
		criteria:           criteria,
		report:             report,
		DegenerateFallback: 0.5,
	}, nil
}

// Report returns the derived weights and consistency audit values
func (e *Engine) Report() *WeightReport {
	return e.report
}

// Criteria returns the criteria the engine scores against
func (e *Engine) Criteria() []models.Criterion {
	return e.criteria
}

// ScoreMinMax computes the criticality score as the weighted sum of
// min-max normalized criterion values. Inputs and weights are normalized,
// so the result lies in [0,1]. A missing raw value is a data-quality error;
// a degenerate range substitutes the configured fallback.
func (e *Engine) ScoreMinMax(values map[string]float64, ranges map[string]normalize.Range) (float64, error) {
	var score float64
	for i, c := range e.criteria {
		raw, ok := values[c.Name]
		if !ok || math.IsNaN(raw) {
			return 0, fmt.Errorf("missing value for criterion %q", c.Name)
		}
		r, ok := ranges[c.Name]
		if !ok {
			return 0, fmt.Errorf("missing range for criterion %q", c.Name)
		}

		v, err := normalize.MinMax(c.Name, raw, r, normalize.Direction(c.Direction))
		if err != nil {
			var degenerate *normalize.DegenerateRangeError
			if errors.As(err, &degenerate) {
				v = e.DegenerateFallback
			} else {
				return 0, err
			}
		}

		score += v * e.report.Weights[i]
	}
	return normalize.Clamp01(score), nil
}

// ScoreBands computes the important index on the ordinal band scale:
// II = sum(S_i * W_i) / sum(S_max,i * W_i), then rescaled so the lowest
// possible rating maps to 0 and the highest to 1, clipped against rounding.
// Missing raw values rate into the lowest band.
func (e *Engine) ScoreBands(values map[string]float64) (float64, error) {
	var weighted, maxWeighted, minWeighted float64
	for i, c := range e.criteria {
		if !c.HasBands() {
			return 0, fmt.Errorf("criterion %q declares no rating bands", c.Name)
		}

		raw, ok := values[c.Name]
		if !ok {
			raw = math.NaN()
		}

		w := e.report.Weights[i]
		weighted += c.Rate(raw) * w
		maxWeighted += c.MaxScore * w
		minWeighted += c.Bands[0].Score * w
	}

	if maxWeighted == 0 {
		return 0, fmt.Errorf("band scale collapses to zero, check criterion max scores")
	}

	ii := weighted / maxWeighted
	iiMin := minWeighted / maxWeighted
	if iiMin >= 1 {
		return 0, fmt.Errorf("band scale has no spread between lowest and highest rating")
	}

	return normalize.Clamp01((ii - iiMin) / (1 - iiMin)), nil
}
