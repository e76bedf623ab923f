package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangular(t *testing.T) {
	mf := Triangular(1, 3, 5)

	assert.Equal(t, 0.0, mf(0.5))
	assert.Equal(t, 0.0, mf(1))
	assert.Equal(t, 0.5, mf(2))
	assert.Equal(t, 1.0, mf(3))
	assert.Equal(t, 0.5, mf(4))
	assert.Equal(t, 0.0, mf(5))
	assert.Equal(t, 0.0, mf(6))
}

func TestTriangularShoulders(t *testing.T) {
	left := Triangular(1, 1, 3)
	assert.Equal(t, 1.0, left(1))
	assert.Equal(t, 0.5, left(2))
	assert.Equal(t, 0.0, left(3))

	right := Triangular(3, 5, 5)
	assert.Equal(t, 0.0, right(3))
	assert.Equal(t, 0.5, right(4))
	assert.Equal(t, 1.0, right(5))
}

func TestTrapezoidal(t *testing.T) {
	mf := Trapezoidal(0, 0.2, 0.6, 0.8)

	assert.Equal(t, 0.0, mf(-1))
	assert.Equal(t, 0.5, mf(0.1))
	assert.Equal(t, 1.0, mf(0.2))
	assert.Equal(t, 1.0, mf(0.6))
	assert.InDelta(t, 0.5, mf(0.7), 1e-12)
	assert.Equal(t, 0.0, mf(0.8))
}

func TestMembershipSpecValidation(t *testing.T) {
	_, err := MembershipSpec{Shape: ShapeTriangular, Params: []float64{1, 2}}.Build()
	assert.ErrorContains(t, err, "3 params")

	_, err = MembershipSpec{Shape: ShapeTriangular, Params: []float64{3, 2, 1}}.Build()
	assert.ErrorContains(t, err, "ordered")

	_, err = MembershipSpec{Shape: ShapeTrapezoidal, Params: []float64{0, 1, 2}}.Build()
	assert.ErrorContains(t, err, "4 params")

	_, err = MembershipSpec{Shape: "gaussian", Params: []float64{0, 1}}.Build()
	assert.ErrorContains(t, err, "unknown membership shape")

	mf, err := MembershipSpec{Shape: ShapeTriangular, Params: []float64{0, 0.5, 1}}.Build()
	require.NoError(t, err)
	assert.Equal(t, 1.0, mf(0.5))
}
