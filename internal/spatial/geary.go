package spatial

import (
	"fmt"

	"github.com/floodgrid/substation-risk-go/internal/stats"
)

// GearyC computes Geary's C over the weight matrix and field x:
// C = ((n-1) / (2 S0)) * sum_ij(w_ij (x_i - x_j)^2) / sum_i(z_i^2).
// Values near 1 mean no autocorrelation; below 1 positive, above 1
// negative.
func GearyC(w *WeightMatrix, x []float64) (float64, error) {
	n := w.N()
	if len(x) != n {
		return 0, fmt.Errorf("field has %d values but the graph has %d substations", len(x), n)
	}

	z := stats.Centered(x)
	var m2sum float64
	for _, zi := range z {
		m2sum += zi * zi
	}
	if m2sum == 0 {
		return 0, &DegenerateVarianceError{Value: x[0]}
	}

	var weightedDiff float64
	for i := 0; i < n; i++ {
		for _, nb := range w.Neighbors(i) {
			d := x[i] - x[nb.Index]
			weightedDiff += nb.Weight * d * d
		}
	}

	return float64(n-1) / (2 * w.S0()) * weightedDiff / m2sum, nil
}
