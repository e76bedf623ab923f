package spatial

import (
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/floodgrid/substation-risk-go/internal/stats"
)

// SignificanceConfig controls permutation-based pseudo-significance.
// The seed is an explicit parameter, never implicit global state, so runs
// are reproducible and parallelizable without coordination.
type SignificanceConfig struct {
	Trials int     // permutation count (e.g. 999)
	Seed   int64   // recorded for reproducibility
	Alpha  float64 // significance level for quadrant classification
}

// DefaultSignificance returns the standard 999-trial configuration
func DefaultSignificance(seed int64) SignificanceConfig {
	return SignificanceConfig{Trials: 999, Seed: seed, Alpha: 0.05}
}

// pseudoPValue derives the two-tailed pseudo p-value of an observed
// statistic against its permutation distribution: the rank of deviations
// from the permutation mean, with the observed outcome counted once.
func pseudoPValue(observed float64, permuted []float64) float64 {
	center := stats.Mean(permuted)
	dev := math.Abs(observed - center)

	rank := 0
	for _, p := range permuted {
		if math.Abs(p-center) >= dev-1e-12 {
			rank++
		}
	}
	return float64(rank+1) / float64(len(permuted)+1)
}

// globalPermutation recomputes a global statistic over randomly
// reassigned field values, holding the spatial graph fixed. Trials run in
// parallel, each with a seed derived from the configured base seed so the
// distribution does not depend on scheduling.
func globalPermutation(w *WeightMatrix, x []float64, trials int, seed int64, stat func(*WeightMatrix, []float64) (float64, error)) ([]float64, error) {
	permuted := make([]float64, trials)

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for t := 0; t < trials; t++ {
		t := t
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(t)))
			shuffled := make([]float64, len(x))
			copy(shuffled, x)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})

			v, err := stat(w, shuffled)
			if err != nil {
				return err
			}
			permuted[t] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return permuted, nil
}

// localGiPValues derives per-substation pseudo p-values for the Gi*
// statistic by conditional permutation on the binary starred rows: the
// substation's own value is held fixed and the neighbor values are
// resampled without replacement from the remaining observations.
func localGiPValues(w *WeightMatrix, x []float64, observed []float64, cfg SignificanceConfig) ([]float64, error) {
	n := w.N()
	mean := stats.Mean(x)
	sd := stats.StdDev(x)
	if sd == 0 {
		return nil, &DegenerateVarianceError{Value: x[0]}
	}

	pvalues := make([]float64, n)

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i+1)*200003))

			// Pool of all other substations' raw values
			pool := make([]float64, 0, n-1)
			for j, xj := range x {
				if j != i {
					pool = append(pool, xj)
				}
			}

			// Starred row under permutation: self plus k neighbors, weight 1
			k := len(w.Neighbors(i))
			sumW := float64(k + 1)
			sumW2 := sumW
			denom := sd * math.Sqrt((float64(n)*sumW2-sumW*sumW)/float64(n-1))
			if denom == 0 {
				pvalues[i] = 1
				return nil
			}

			permuted := make([]float64, cfg.Trials)
			for t := 0; t < cfg.Trials; t++ {
				sumWX := x[i]
				for j := 0; j < k; j++ {
					pick := j + rng.Intn(len(pool)-j)
					pool[j], pool[pick] = pool[pick], pool[j]
					sumWX += pool[j]
				}
				permuted[t] = (sumWX - mean*sumW) / denom
			}

			pvalues[i] = pseudoPValue(observed[i], permuted)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pvalues, nil
}

// localMoranPValues derives per-substation pseudo p-values for the local
// Moran's I by conditional permutation: the substation's own value is held
// fixed and its neighbor values are resampled without replacement from the
// remaining observations.
func localMoranPValues(w *WeightMatrix, x []float64, observed []float64, cfg SignificanceConfig) ([]float64, error) {
	n := w.N()
	z := stats.Centered(x)
	var m2 float64
	for _, zi := range z {
		m2 += zi * zi
	}
	if m2 == 0 {
		return nil, &DegenerateVarianceError{Value: x[0]}
	}
	m2 /= float64(n)

	pvalues := make([]float64, n)

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i+1)*100003))

			// Pool of all other substations' deviations
			pool := make([]float64, 0, n-1)
			for j, zj := range z {
				if j != i {
					pool = append(pool, zj)
				}
			}

			row := w.Neighbors(i)
			permuted := make([]float64, cfg.Trials)
			for t := 0; t < cfg.Trials; t++ {
				// Partial Fisher-Yates: draw len(row) values without replacement
				var lag float64
				for j := range row {
					pick := j + rng.Intn(len(pool)-j)
					pool[j], pool[pick] = pool[pick], pool[j]
					lag += row[j].Weight * pool[j]
				}
				permuted[t] = z[i] / m2 * lag
			}

			pvalues[i] = pseudoPValue(observed[i], permuted)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pvalues, nil
}
