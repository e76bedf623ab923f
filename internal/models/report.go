package models

// Moran scatterplot quadrants for the local Moran's I classification
const (
	QuadrantHH             = "HH" // high value, high-value neighbors
	QuadrantLL             = "LL" // low value, low-value neighbors
	QuadrantHL             = "HL" // high outlier among low neighbors
	QuadrantLH             = "LH" // low outlier among high neighbors
	QuadrantNotSignificant = "NS"
)

// Getis-Ord Gi* hot/cold spot classes by z-score confidence level
const (
	GiHotSpot99      = "hot-99"
	GiHotSpot95      = "hot-95"
	GiHotSpot90      = "hot-90"
	GiColdSpot90     = "cold-90"
	GiColdSpot95     = "cold-95"
	GiColdSpot99     = "cold-99"
	GiNotSignificant = "ns"
)

// LocalCluster is the per-substation outcome of the local autocorrelation
// statistics for one scenario
type LocalCluster struct {
	SubstationID int64   `json:"substation_id" db:"substation_id"`
	Code         string  `json:"code" db:"code"`
	LocalI       float64 `json:"local_i" db:"local_i"`
	LocalIP      float64 `json:"local_i_pseudo_p" db:"local_i_pseudo_p"`
	Quadrant     string  `json:"quadrant" db:"quadrant"`
	GiZ          float64 `json:"gi_z" db:"gi_z"`
	GiP          float64 `json:"gi_pseudo_p" db:"gi_pseudo_p"`
	GiCategory   string  `json:"gi_category" db:"gi_category"`
}

// ClusterReport is the full autocorrelation report for one scenario:
// global statistics with pseudo-significance plus the per-substation
// local statistics and classifications
type ClusterReport struct {
	Scenario Scenario `json:"scenario" db:"scenario"`

	// Global statistics
	MoranI        float64 `json:"moran_i" db:"moran_i"`
	MoranExpected float64 `json:"moran_expected" db:"moran_expected"` // -1/(n-1) under randomization
	MoranP        float64 `json:"moran_pseudo_p" db:"moran_pseudo_p"`
	GearyC        float64 `json:"geary_c" db:"geary_c"`
	GearyP        float64 `json:"geary_pseudo_p" db:"geary_pseudo_p"`

	// Reproducibility parameters
	Permutations int   `json:"permutations" db:"permutations"`
	Seed         int64 `json:"seed" db:"seed"`
	Neighbors    int   `json:"neighbors" db:"neighbors"`

	Locals []LocalCluster `json:"locals" db:"-"`
}
