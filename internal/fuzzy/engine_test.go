package fuzzy

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := DefaultCalibration().Build()
	require.NoError(t, err)
	return engine
}

func TestDefaultCalibrationBuilds(t *testing.T) {
	engine := defaultEngine(t)

	min, max := engine.OutputRange()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 1.0, max)
}

func TestScoreMidpointAsset(t *testing.T) {
	engine := defaultEngine(t)

	// Exactly one rule fires at full strength: (moderate, midlife, standard)
	// -> medium, whose clipped shape is symmetric around 0.5
	score, err := engine.Score(map[string]float64{
		VarCondition: 3,
		VarAge:       35,
		VarMaterial:  2,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-6)
}

func TestScoreDegradedAsset(t *testing.T) {
	engine := defaultEngine(t)

	// (poor, old, fragile) -> high; centroid of the high trapezoid is ~0.844
	score, err := engine.Score(map[string]float64{
		VarCondition: 5,
		VarAge:       80,
		VarMaterial:  3,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.8444, score, 0.02)
}

func TestScoreHealthyAsset(t *testing.T) {
	engine := defaultEngine(t)

	// (good, new, robust) -> low; centroid of the low trapezoid is ~0.156
	score, err := engine.Score(map[string]float64{
		VarCondition: 1,
		VarAge:       5,
		VarMaterial:  1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.1556, score, 0.02)
}

func TestScoreOrdering(t *testing.T) {
	engine := defaultEngine(t)

	healthy, err := engine.Score(map[string]float64{VarCondition: 1, VarAge: 5, VarMaterial: 1})
	require.NoError(t, err)
	mid, err := engine.Score(map[string]float64{VarCondition: 3, VarAge: 35, VarMaterial: 2})
	require.NoError(t, err)
	degraded, err := engine.Score(map[string]float64{VarCondition: 5, VarAge: 80, VarMaterial: 3})
	require.NoError(t, err)

	assert.Less(t, healthy, mid)
	assert.Less(t, mid, degraded)
}

func TestScoreDeterministic(t *testing.T) {
	engine := defaultEngine(t)
	inputs := map[string]float64{VarCondition: 2.4, VarAge: 41, VarMaterial: 1.7}

	first, err := engine.Score(inputs)
	require.NoError(t, err)
	second, err := engine.Score(inputs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScoreOutOfDomain(t *testing.T) {
	engine := defaultEngine(t)

	_, err := engine.Score(map[string]float64{
		VarCondition: 10, // outside the 1-5 condition scale
		VarAge:       35,
		VarMaterial:  2,
	})
	require.Error(t, err)

	var noRule *NoRuleFiredError
	assert.True(t, errors.As(err, &noRule))
	assert.Contains(t, err.Error(), "condition=10")
}

func TestScoreMissingInput(t *testing.T) {
	engine := defaultEngine(t)

	_, err := engine.Score(map[string]float64{
		VarCondition: 3,
		VarAge:       35,
	})
	assert.ErrorContains(t, err, "material")
}

func TestIncompleteRuleBaseRejected(t *testing.T) {
	cal := DefaultCalibration()
	cal.Rules = cal.Rules[1:] // drop one combination

	_, err := cal.Build()
	assert.ErrorContains(t, err, "incomplete")
}

func TestDuplicateRuleRejected(t *testing.T) {
	cal := DefaultCalibration()
	cal.Rules = append(cal.Rules, cal.Rules[0])

	_, err := cal.Build()
	assert.ErrorContains(t, err, "more than once")
}

func TestUnknownConsequentRejected(t *testing.T) {
	cal := DefaultCalibration()
	cal.Rules[0].Consequent = "catastrophic"

	_, err := cal.Build()
	assert.ErrorContains(t, err, "unknown output term")
}

func TestCoverageGapRejected(t *testing.T) {
	cal := DefaultCalibration()
	// Leave the middle of the condition domain uncovered
	cal.Inputs[0].Terms = []TermSpec{
		{Name: "good", Shape: ShapeTriangular, Params: []float64{1, 1, 2}},
		{Name: "poor", Shape: ShapeTriangular, Params: []float64{4, 5, 5}},
	}

	_, err := cal.Build()
	assert.ErrorContains(t, err, "no term covering")
}

func TestScoreStaysInOutputDomain(t *testing.T) {
	engine := defaultEngine(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("score lies in the output domain for any in-domain input", prop.ForAll(
		func(condition, age, material float64) bool {
			score, err := engine.Score(map[string]float64{
				VarCondition: condition,
				VarAge:       age,
				VarMaterial:  material,
			})
			if err != nil {
				return false
			}
			return score >= 0 && score <= 1
		},
		gen.Float64Range(1, 5),
		gen.Float64Range(0, 100),
		gen.Float64Range(1, 3),
	))

	properties.TestingRun(t)
}
