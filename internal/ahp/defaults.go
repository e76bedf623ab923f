package ahp

import "github.com/floodgrid/substation-risk-go/internal/models"

// Default study criteria names
const (
	CriterionPowerDraw      = "power_draw"
	CriterionGridNodeRating = "grid_node_rating"
	CriterionResidents      = "residents"
	CriterionCommerce       = "commerce"
	CriterionInfrastructure = "critical_infrastructure"
)

// DefaultCriteria returns the study's five criteria with their ordinal
// rating bands: supply power draw (kVA), grid node rating, supplied
// residents, supplied commerce, supplied critical infrastructure. All are
// benefit criteria (more supplied load means a more critical substation).
func DefaultCriteria() []models.Criterion {
	return []models.Criterion{
		{
			Name:      CriterionPowerDraw,
			Category:  models.CategoryTechnical,
			Direction: models.DirectionBenefit,
			Bands: []models.RatingBand{
				{Below: 83.80, Score: 1},
				{Below: 185.53, Score: 2},
			},
			MaxScore: 3,
		},
		{
			Name:      CriterionGridNodeRating,
			Category:  models.CategoryTechnical,
			Direction: models.DirectionBenefit,
			Bands: []models.RatingBand{
				{Below: 1e-9, Score: 1}, // rating of exactly zero
				{Below: 0.5, Score: 2},
			},
			MaxScore: 3,
		},
		{
			Name:      CriterionResidents,
			Category:  models.CategoryUtility,
			Direction: models.DirectionBenefit,
			Bands: []models.RatingBand{
				{Below: 130, Score: 1},
				{Below: 274, Score: 2},
			},
			MaxScore: 3,
		},
		{
			Name:      CriterionCommerce,
			Category:  models.CategoryUtility,
			Direction: models.DirectionBenefit,
			Bands: []models.RatingBand{
				{Below: 4, Score: 1},
				{Below: 13, Score: 2},
			},
			MaxScore: 3,
		},
		{
			Name:      CriterionInfrastructure,
			Category:  models.CategoryUtility,
			Direction: models.DirectionBenefit,
			Bands: []models.RatingBand{
				{Below: 1e-9, Score: 1}, // no critical infrastructure supplied
				{Below: 2, Score: 2},
			},
			MaxScore: 3,
		},
	}
}

// DefaultMatrix returns the expert comparison matrix of the study,
// calibrated so the derived weights put supplied critical infrastructure
// far ahead of residents, grid node rating, power draw and commerce
// (CR well under the 0.10 threshold)
func DefaultMatrix() (*PairwiseMatrix, error) {
	criteria := []string{
		CriterionPowerDraw,
		CriterionGridNodeRating,
		CriterionResidents,
		CriterionCommerce,
		CriterionInfrastructure,
	}

	return NewPairwiseMatrix(criteria, [][]float64{
		{1, 1.0 / 2, 1.0 / 4, 2, 1.0 / 9},
		{2, 1, 1.0 / 2, 4, 1.0 / 5},
		{4, 2, 1, 7, 1.0 / 2},
		{1.0 / 2, 1.0 / 4, 1.0 / 7, 1, 1.0 / 9},
		{9, 5, 2, 9, 1},
	})
}
