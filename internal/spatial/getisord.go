package spatial

import (
	"fmt"
	"math"

	"github.com/floodgrid/substation-risk-go/internal/stats"
)

// Gi* hot/cold spot classes by z-score confidence level
const (
	GiHotSpot99      = "hot-99"
	GiHotSpot95      = "hot-95"
	GiHotSpot90      = "hot-90"
	GiColdSpot90     = "cold-90"
	GiColdSpot95     = "cold-95"
	GiColdSpot99     = "cold-99"
	GiNotSignificant = "ns"
)

// Critical z values for the 90/95/99% confidence bins
const (
	z90 = 1.645
	z95 = 1.960
	z99 = 2.576
)

// GiStar computes the Getis-Ord Gi* statistic per substation on binary
// starred weight rows (the substation itself plus its k neighbors, weight
// 1 each). The result is itself a z-score:
// Gi* = (sum_j(w_ij x_j) - mean * W_i) / (S * sqrt((n*W2_i - W_i^2)/(n-1)))
// with mean and S the global mean and population standard deviation of x.
func GiStar(w *WeightMatrix, x []float64) ([]float64, error) {
	n := w.N()
	if len(x) != n {
		return nil, fmt.Errorf("field has %d values but the graph has %d substations", len(x), n)
	}

	mean := stats.Mean(x)
	sd := stats.StdDev(x)
	if sd == 0 {
		return nil, &DegenerateVarianceError{Value: x[0]}
	}

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		// Starred row: self plus neighbors, binary weights
		sumW := 1.0
		sumW2 := 1.0
		sumWX := x[i]
		for _, nb := range w.Neighbors(i) {
			sumW++
			sumW2++
			sumWX += x[nb.Index]
		}

		denom := sd * math.Sqrt((float64(n)*sumW2-sumW*sumW)/float64(n-1))
		if denom == 0 {
			scores[i] = 0
			continue
		}
		scores[i] = (sumWX - mean*sumW) / denom
	}
	return scores, nil
}

// ClassifyGi bins a Gi* z-score into hot/cold spot classes at the 90, 95
// and 99% confidence levels
func ClassifyGi(z float64) string {
	switch {
	case z >= z99:
		return GiHotSpot99
	case z >= z95:
		return GiHotSpot95
	case z >= z90:
		return GiHotSpot90
	case z <= -z99:
		return GiColdSpot99
	case z <= -z95:
		return GiColdSpot95
	case z <= -z90:
		return GiColdSpot90
	default:
		return GiNotSignificant
	}
}
