package ahp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/normalize"
)

func TestNewPairwiseMatrixValidation(t *testing.T) {
	criteria := []string{"a", "b"}

	_, err := NewPairwiseMatrix([]string{"a"}, [][]float64{{1}})
	assert.ErrorContains(t, err, "at least 2 criteria")

	_, err = NewPairwiseMatrix(criteria, [][]float64{{1, 2}})
	assert.ErrorContains(t, err, "rows")

	_, err = NewPairwiseMatrix(criteria, [][]float64{{2, 2}, {0.5, 1}})
	assert.ErrorContains(t, err, "diagonal")

	_, err = NewPairwiseMatrix(criteria, [][]float64{{1, 3}, {3, 1}})
	assert.ErrorContains(t, err, "not reciprocal")

	_, err = NewPairwiseMatrix(criteria, [][]float64{{1, -3}, {-1.0 / 3, 1}})
	assert.ErrorContains(t, err, "positive")

	_, err = NewPairwiseMatrix(criteria, [][]float64{{1, 12}, {1.0 / 12, 1}})
	assert.ErrorContains(t, err, "scale")

	m, err := NewPairwiseMatrix(criteria, [][]float64{{1, 3}, {1.0 / 3, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dimension())
}

func TestDeriveWeightsConsistentMatrix(t *testing.T) {
	// Ratio matrix of the weights (0.5, 0.3, 0.2) is perfectly consistent
	w := []float64{0.5, 0.3, 0.2}
	entries := make([][]float64, 3)
	for i := range entries {
		entries[i] = make([]float64, 3)
		for j := range entries[i] {
			entries[i][j] = w[i] / w[j]
		}
	}

	m, err := NewPairwiseMatrix([]string{"a", "b", "c"}, entries)
	require.NoError(t, err)

	report, err := DeriveWeights(m)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, report.LambdaMax, 1e-6)
	assert.InDelta(t, 0.0, report.CR, 1e-6)
	for i := range w {
		assert.InDelta(t, w[i], report.Weights[i], 1e-6)
	}
}

func TestDeriveWeightsSumToOne(t *testing.T) {
	m, err := DefaultMatrix()
	require.NoError(t, err)

	report, err := DeriveWeights(m)
	require.NoError(t, err)

	var sum float64
	for _, w := range report.Weights {
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDeriveWeightsTwoCriteriaAlwaysConsistent(t *testing.T) {
	m, err := NewPairwiseMatrix([]string{"a", "b"}, [][]float64{{1, 9}, {1.0 / 9, 1}})
	require.NoError(t, err)

	report, err := DeriveWeights(m)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.CR)
	assert.InDelta(t, 0.9, report.Weights[0], 1e-6)
	assert.InDelta(t, 0.1, report.Weights[1], 1e-6)
}

func TestDeriveWeightsInconsistentMatrix(t *testing.T) {
	// Cyclic preferences: a >> b, b >> c, c >> a
	m, err := NewPairwiseMatrix([]string{"a", "b", "c"}, [][]float64{
		{1, 9, 1.0 / 9},
		{1.0 / 9, 1, 9},
		{9, 1.0 / 9, 1},
	})
	require.NoError(t, err)

	_, err = DeriveWeights(m)
	require.Error(t, err)

	var inconsistent *InconsistentJudgmentError
	require.True(t, errors.As(err, &inconsistent))
	assert.GreaterOrEqual(t, inconsistent.CR, ConsistencyThreshold)
	assert.Equal(t, 3, inconsistent.Dimension)
}

func TestDefaultMatrixConsistency(t *testing.T) {
	m, err := DefaultMatrix()
	require.NoError(t, err)

	report, err := DeriveWeights(m)
	require.NoError(t, err)

	assert.Less(t, report.CR, ConsistencyThreshold)
	assert.InDelta(t, 0.013, report.CR, 0.02)

	byName := make(map[string]float64, len(report.Criteria))
	for i, name := range report.Criteria {
		byName[name] = report.Weights[i]
	}

	// Critical infrastructure dominates, commerce matters least
	assert.Greater(t, byName[CriterionInfrastructure], byName[CriterionResidents])
	assert.Greater(t, byName[CriterionResidents], byName[CriterionGridNodeRating])
	assert.Greater(t, byName[CriterionGridNodeRating], byName[CriterionPowerDraw])
	assert.Greater(t, byName[CriterionPowerDraw], byName[CriterionCommerce])

	assert.InDelta(t, 0.509, byName[CriterionInfrastructure], 0.03)
}

func defaultBandEngine(t *testing.T) *Engine {
	t.Helper()
	m, err := DefaultMatrix()
	require.NoError(t, err)
	engine, err := NewEngine(DefaultCriteria(), m)
	require.NoError(t, err)
	return engine
}

func TestScoreBandsExtremes(t *testing.T) {
	engine := defaultBandEngine(t)

	low, err := engine.ScoreBands(map[string]float64{
		CriterionPowerDraw:      50,
		CriterionGridNodeRating: 0,
		CriterionResidents:      100,
		CriterionCommerce:       2,
		CriterionInfrastructure: 0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, low, 1e-9)

	high, err := engine.ScoreBands(map[string]float64{
		CriterionPowerDraw:      200,
		CriterionGridNodeRating: 1,
		CriterionResidents:      300,
		CriterionCommerce:       20,
		CriterionInfrastructure: 3,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, high, 1e-9)
}

func TestScoreBandsSingleCriterionLift(t *testing.T) {
	engine := defaultBandEngine(t)

	// Lifting only infrastructure to the top band raises the rescaled
	// score by exactly that criterion's weight
	score, err := engine.ScoreBands(map[string]float64{
		CriterionPowerDraw:      50,
		CriterionGridNodeRating: 0,
		CriterionResidents:      100,
		CriterionCommerce:       2,
		CriterionInfrastructure: 3,
	})
	require.NoError(t, err)

	report := engine.Report()
	var infraWeight float64
	for i, name := range report.Criteria {
		if name == CriterionInfrastructure {
			infraWeight = report.Weights[i]
		}
	}
	assert.InDelta(t, infraWeight, score, 1e-9)
}

func TestScoreBandsMissingValueRatesLowest(t *testing.T) {
	engine := defaultBandEngine(t)

	missing, err := engine.ScoreBands(map[string]float64{
		CriterionPowerDraw:      50,
		CriterionGridNodeRating: math.NaN(),
		CriterionResidents:      100,
		CriterionCommerce:       2,
		CriterionInfrastructure: 0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, missing, 1e-9)
}

func minMaxEngine(t *testing.T) *Engine {
	t.Helper()
	criteria := []models.Criterion{
		{Name: "a", Category: models.CategoryTechnical, Direction: models.DirectionBenefit},
		{Name: "b", Category: models.CategoryUtility, Direction: models.DirectionCost},
	}
	m, err := NewPairwiseMatrix([]string{"a", "b"}, [][]float64{{1, 3}, {1.0 / 3, 1}})
	require.NoError(t, err)
	engine, err := NewEngine(criteria, m)
	require.NoError(t, err)
	return engine
}

func TestScoreMinMax(t *testing.T) {
	engine := minMaxEngine(t)
	ranges := map[string]normalize.Range{
		"a": {Min: 0, Max: 10},
		"b": {Min: 0, Max: 4},
	}

	// a=5 -> 0.5 (benefit), b=2 -> 0.5 (cost); weights are (0.75, 0.25)
	score, err := engine.ScoreMinMax(map[string]float64{"a": 5, "b": 2}, ranges)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)

	// Cost direction inverts: the lowest b is the most critical
	score, err = engine.ScoreMinMax(map[string]float64{"a": 10, "b": 0}, ranges)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScoreMinMaxMissingValue(t *testing.T) {
	engine := minMaxEngine(t)
	ranges := map[string]normalize.Range{
		"a": {Min: 0, Max: 10},
		"b": {Min: 0, Max: 4},
	}

	_, err := engine.ScoreMinMax(map[string]float64{"a": 5}, ranges)
	assert.ErrorContains(t, err, `missing value for criterion "b"`)

	_, err = engine.ScoreMinMax(map[string]float64{"a": 5, "b": math.NaN()}, ranges)
	assert.ErrorContains(t, err, `missing value for criterion "b"`)
}

func TestScoreMinMaxDegenerateRangeFallback(t *testing.T) {
	engine := minMaxEngine(t)
	ranges := map[string]normalize.Range{
		"a": {Min: 7, Max: 7}, // zero variance across the study area
		"b": {Min: 0, Max: 4},
	}

	score, err := engine.ScoreMinMax(map[string]float64{"a": 7, "b": 0}, ranges)
	require.NoError(t, err)

	// a contributes the 0.5 fallback, b contributes 1.0 (cost, at min)
	assert.InDelta(t, 0.75*0.5+0.25*1.0, score, 1e-9)
}

func TestNewEngineCriteriaMismatch(t *testing.T) {
	criteria := []models.Criterion{
		{Name: "a", Direction: models.DirectionBenefit},
		{Name: "c", Direction: models.DirectionBenefit},
	}
	m, err := NewPairwiseMatrix([]string{"a", "b"}, [][]float64{{1, 3}, {1.0 / 3, 1}})
	require.NoError(t, err)

	_, err = NewEngine(criteria, m)
	assert.ErrorContains(t, err, `criterion 1 is "c"`)
}
