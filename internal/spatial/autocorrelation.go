package spatial

// LocalResult is the per-substation outcome of the local statistics
type LocalResult struct {
	I          float64
	P          float64
	Quadrant   string
	GiZ        float64
	GiP        float64
	GiCategory string
}

// Result is the full autocorrelation analysis of one risk-score field
type Result struct {
	MoranI        float64
	MoranExpected float64
	MoranP        float64
	GearyC        float64
	GearyP        float64
	Locals        []LocalResult
}

// Analyze computes Global Moran's I, Geary's C, local Moran's I with
// quadrant classification and Getis-Ord Gi* over the shared weight matrix
// and one scenario's risk field, with permutation-based
// pseudo-significance. The weight matrix is read-only; results are never
// cached across scenarios because the input field differs.
func Analyze(w *WeightMatrix, x []float64, cfg SignificanceConfig) (*Result, error) {
	if cfg.Trials < 1 {
		cfg.Trials = DefaultSignificance(cfg.Seed).Trials
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = 0.05
	}

	moranI, moranE, err := GlobalMoran(w, x)
	if err != nil {
		return nil, err
	}
	gearyC, err := GearyC(w, x)
	if err != nil {
		return nil, err
	}
	localI, quadrants, err := LocalMoran(w, x)
	if err != nil {
		return nil, err
	}
	giZ, err := GiStar(w, x)
	if err != nil {
		return nil, err
	}

	moranPerms, err := globalPermutation(w, x, cfg.Trials, cfg.Seed, func(w *WeightMatrix, shuffled []float64) (float64, error) {
		v, _, err := GlobalMoran(w, shuffled)
		return v, err
	})
	if err != nil {
		return nil, err
	}
	gearyPerms, err := globalPermutation(w, x, cfg.Trials, cfg.Seed+1, GearyC)
	if err != nil {
		return nil, err
	}
	localP, err := localMoranPValues(w, x, localI, cfg)
	if err != nil {
		return nil, err
	}
	giP, err := localGiPValues(w, x, giZ, cfg)
	if err != nil {
		return nil, err
	}

	locals := make([]LocalResult, w.N())
	for i := range locals {
		quadrant := quadrants[i]
		if localP[i] > cfg.Alpha {
			quadrant = QuadrantNotSignificant
		}
		locals[i] = LocalResult{
			I:          localI[i],
			P:          localP[i],
			Quadrant:   quadrant,
			GiZ:        giZ[i],
			GiP:        giP[i],
			GiCategory: ClassifyGi(giZ[i]),
		}
	}

	return &Result{
		MoranI:        moranI,
		MoranExpected: moranE,
		MoranP:        pseudoPValue(moranI, moranPerms),
		GearyC:        gearyC,
		GearyP:        pseudoPValue(gearyC, gearyPerms),
		Locals:        locals,
	}, nil
}
