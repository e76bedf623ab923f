package spatial

import (
	"fmt"

	"github.com/floodgrid/substation-risk-go/internal/stats"
)

// Moran scatterplot quadrants
const (
	QuadrantHH             = "HH"
	QuadrantLL             = "LL"
	QuadrantHL             = "HL"
	QuadrantLH             = "LH"
	QuadrantNotSignificant = "NS"
)

// DegenerateVarianceError is returned when the risk field is constant, so
// autocorrelation statistics are undefined
type DegenerateVarianceError struct {
	Value float64
}

func (e *DegenerateVarianceError) Error() string {
	return fmt.Sprintf("risk field is constant (all values %g), autocorrelation is undefined", e.Value)
}

// GlobalMoran computes Moran's I over the weight matrix and field x:
// I = (n / S0) * sum_ij(w_ij z_i z_j) / sum_i(z_i^2), with z mean-centered.
// The expected value under randomization is -1/(n-1).
func GlobalMoran(w *WeightMatrix, x []float64) (observed, expected float64, err error) {
	n := w.N()
	if len(x) != n {
		return 0, 0, fmt.Errorf("field has %d values but the graph has %d substations", len(x), n)
	}

	z := stats.Centered(x)
	var m2sum float64
	for _, zi := range z {
		m2sum += zi * zi
	}
	if m2sum == 0 {
		return 0, 0, &DegenerateVarianceError{Value: x[0]}
	}

	lags := w.Lag(z)
	var cross float64
	for i, zi := range z {
		cross += zi * lags[i]
	}

	observed = float64(n) / w.S0() * cross / m2sum
	expected = -1.0 / float64(n-1)
	return observed, expected, nil
}

// LocalMoran computes the local Moran's I (LISA) per substation:
// I_i = (z_i / m2) * sum_j(w_ij z_j), m2 = sum(z^2)/n. The returned
// quadrants classify each substation by the sign of its own deviation and
// of its weighted neighbor sum (HH, LL, HL, LH); significance is applied
// separately.
func LocalMoran(w *WeightMatrix, x []float64) (local []float64, quadrants []string, err error) {
	n := w.N()
	if len(x) != n {
		return nil, nil, fmt.Errorf("field has %d values but the graph has %d substations", len(x), n)
	}

	z := stats.Centered(x)
	var m2 float64
	for _, zi := range z {
		m2 += zi * zi
	}
	if m2 == 0 {
		return nil, nil, &DegenerateVarianceError{Value: x[0]}
	}
	m2 /= float64(n)

	lags := w.Lag(z)
	local = make([]float64, n)
	quadrants = make([]string, n)
	for i, zi := range z {
		local[i] = zi / m2 * lags[i]
		quadrants[i] = classifyQuadrant(zi, lags[i])
	}
	return local, quadrants, nil
}

func classifyQuadrant(z, lag float64) string {
	switch {
	case z >= 0 && lag >= 0:
		return QuadrantHH
	case z < 0 && lag < 0:
		return QuadrantLL
	case z >= 0:
		return QuadrantHL
	default:
		return QuadrantLH
	}
}
