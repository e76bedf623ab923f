package spatial

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r2"
)

// WeightScheme selects how neighbor weights are assigned
type WeightScheme string

const (
	// RowStandardized gives each of the k neighbors weight 1/k (default)
	RowStandardized WeightScheme = "row-standardized"
	// Binary gives each neighbor weight 1
	Binary WeightScheme = "binary"
	// InverseDistance weights neighbors by 1/d, then row-standardizes
	InverseDistance WeightScheme = "inverse-distance"
)

// InsufficientNeighborsError is returned when the study area has too few
// substations for the configured neighbor count (k must be <= n-1)
type InsufficientNeighborsError struct {
	K int
	N int
}

func (e *InsufficientNeighborsError) Error() string {
	return fmt.Sprintf("cannot build a %d-nearest-neighbor graph over %d substations (need at least %d)", e.K, e.N, e.K+1)
}

// Neighbor is one entry of a substation's neighbor list
type Neighbor struct {
	Index    int
	Distance float64
	Weight   float64
}

// WeightMatrix is the k-nearest-neighbor spatial weight structure. It is
// built once from substation coordinates and shared read-only across all
// scenarios and statistics; it must never be mutated after construction.
type WeightMatrix struct {
	k      int
	scheme WeightScheme
	rows   [][]Neighbor
}

// BuildKNN constructs the k-nearest-neighbor weight matrix over projected
// planar coordinates. Points must be passed in stable identifier order:
// distance ties break toward the lower index. A point is never its own
// neighbor.
func BuildKNN(points []r2.Point, k int, scheme WeightScheme) (*WeightMatrix, error) {
	n := len(points)
	if k < 1 {
		return nil, fmt.Errorf("neighbor count must be at least 1, got %d", k)
	}
	if n <= k {
		return nil, &InsufficientNeighborsError{K: k, N: n}
	}

	rows := make([][]Neighbor, n)
	for i := range points {
		candidates := make([]Neighbor, 0, n-1)
		for j := range points {
			if j == i {
				continue
			}
			d := points[i].Sub(points[j]).Norm()
			candidates = append(candidates, Neighbor{Index: j, Distance: d})
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			if candidates[a].Distance != candidates[b].Distance {
				return candidates[a].Distance < candidates[b].Distance
			}
			return candidates[a].Index < candidates[b].Index
		})

		row := make([]Neighbor, k)
		copy(row, candidates[:k])
		assignWeights(row, scheme)
		rows[i] = row
	}

	return &WeightMatrix{k: k, scheme: scheme, rows: rows}, nil
}

func assignWeights(row []Neighbor, scheme WeightScheme) {
	switch scheme {
	case Binary:
		for i := range row {
			row[i].Weight = 1
		}
	case InverseDistance:
		var sum float64
		for i := range row {
			w := 1.0
			if row[i].Distance > 0 {
				w = 1 / row[i].Distance
			}
			row[i].Weight = w
			sum += w
		}
		for i := range row {
			row[i].Weight /= sum
		}
	default: // RowStandardized
		for i := range row {
			row[i].Weight = 1 / float64(len(row))
		}
	}
}

// N returns the number of substations in the graph
func (w *WeightMatrix) N() int {
	return len(w.rows)
}

// K returns the configured neighbor count
func (w *WeightMatrix) K() int {
	return w.k
}

// Scheme returns the weighting scheme the matrix was built with
func (w *WeightMatrix) Scheme() WeightScheme {
	return w.scheme
}

// Neighbors returns substation i's neighbor list ordered by distance.
// The slice is shared; callers must not modify it.
func (w *WeightMatrix) Neighbors(i int) []Neighbor {
	return w.rows[i]
}

// RowSum returns the sum of weights in row i (1 for standardized schemes)
func (w *WeightMatrix) RowSum(i int) float64 {
	var sum float64
	for _, nb := range w.rows[i] {
		sum += nb.Weight
	}
	return sum
}

// S0 returns the sum of all weights in the matrix
func (w *WeightMatrix) S0() float64 {
	var sum float64
	for i := range w.rows {
		sum += w.RowSum(i)
	}
	return sum
}

// Lag computes the spatially lagged value sum(w_ij * x_j) for every i
func (w *WeightMatrix) Lag(x []float64) []float64 {
	lags := make([]float64, len(w.rows))
	for i, row := range w.rows {
		var sum float64
		for _, nb := range row {
			sum += nb.Weight * x[nb.Index]
		}
		lags[i] = sum
	}
	return lags
}
