package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}))
}

func TestWeightedMean(t *testing.T) {
	assert.Equal(t, 0.0, WeightedMean(nil, nil))
	assert.InDelta(t, 2.5, WeightedMean([]float64{1, 3}, []float64{1, 3}), 1e-12)

	// Zero total weight falls back to the plain mean
	assert.Equal(t, 2.0, WeightedMean([]float64{1, 3}, []float64{0, 0}))
}

func TestVariance(t *testing.T) {
	values := []float64{1, 1, 1, 5, 5}

	assert.InDelta(t, 3.84, Variance(values), 1e-12)
	assert.InDelta(t, 4.8, SampleVariance(values), 1e-12)
	assert.InDelta(t, 1.959591, StdDev(values), 1e-6)
	assert.Equal(t, 0.0, SampleVariance([]float64{7}))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestMinMaxSum(t *testing.T) {
	values := []float64{3, -1, 4}
	assert.Equal(t, -1.0, Min(values))
	assert.Equal(t, 4.0, Max(values))
	assert.Equal(t, 6.0, Sum(values))
}

func TestCentered(t *testing.T) {
	centered := Centered([]float64{1, 2, 3})
	assert.InDelta(t, -1.0, centered[0], 1e-12)
	assert.InDelta(t, 0.0, centered[1], 1e-12)
	assert.InDelta(t, 1.0, centered[2], 1e-12)
	assert.InDelta(t, 0.0, Sum(centered), 1e-12)
}

func TestZScore(t *testing.T) {
	z := ZScore([]float64{2, 2, 2})
	assert.Equal(t, []float64{0, 0, 0}, z)

	z = ZScore([]float64{1, 1, 1, 5, 5})
	assert.InDelta(t, 0.0, Mean(z), 1e-12)
	assert.InDelta(t, 1.0, StdDev(z), 1e-12)
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 3.0, Quantile(values, 0.5))
	assert.Equal(t, 5.0, Quantile(values, 1))
	assert.InDelta(t, 2.0, Quantile(values, 0.25), 1e-12)
}
