package models

// Criterion categories
const (
	CategoryTechnical = "technical"
	CategoryUtility   = "utility"
)

// Criterion directions: benefit means higher raw values are more critical,
// cost means lower raw values are more critical
const (
	DirectionBenefit = "benefit"
	DirectionCost    = "cost"
)

// RatingBand maps raw values below an upper bound to an ordinal score.
// Bands are ordered ascending; a value is rated by the first band whose
// bound it falls under, and values beyond every band get the criterion's
// maximum score.
type RatingBand struct {
	Below float64 `json:"below"`
	Score float64 `json:"score"`
}

// Criterion describes one technical or utility criterion of the
// criticality assessment
type Criterion struct {
	Name      string       `json:"name"`
	Category  string       `json:"category"`  // technical or utility
	Direction string       `json:"direction"` // benefit or cost
	Bands     []RatingBand `json:"bands,omitempty"`
	MaxScore  float64      `json:"max_score,omitempty"` // catch-all score of the band scale (e.g. 3)
}

// Rate maps a raw value onto the criterion's ordinal band scale. Missing
// values (passed as NaN by the caller) rate into the lowest band.
func (c Criterion) Rate(value float64) float64 {
	if len(c.Bands) == 0 {
		return value
	}
	if value != value { // NaN: attribute missing in the registry
		return c.Bands[0].Score
	}
	for _, b := range c.Bands {
		if value < b.Below {
			return b.Score
		}
	}
	return c.MaxScore
}

// HasBands reports whether the criterion uses the ordinal band scale
func (c Criterion) HasBands() bool {
	return len(c.Bands) > 0
}
