package service

import (
	"fmt"
	"io"

	"github.com/floodgrid/substation-risk-go/internal/ingest"
	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/repository"
)

// ImportService loads CSV interchange files into the database
type ImportService struct {
	substationRepo *repository.SubstationRepository
	riskRepo       *repository.RiskFieldRepository
	criteria       []models.Criterion
}

// NewImportService creates a new import service
func NewImportService(substationRepo *repository.SubstationRepository, riskRepo *repository.RiskFieldRepository,
	criteria []models.Criterion) *ImportService {
	return &ImportService{
		substationRepo: substationRepo,
		riskRepo:       riskRepo,
		criteria:       criteria,
	}
}

// ImportRegistry loads the asset registry CSV and upserts every substation
// by its external code. Returns the number of substations imported.
func (s *ImportService) ImportRegistry(r io.Reader) (int, error) {
	substations, err := ingest.LoadRegistry(r, s.criteria)
	if err != nil {
		return 0, err
	}
	if len(substations) == 0 {
		return 0, fmt.Errorf("registry contains no substations")
	}

	for i := range substations {
		if err := s.substationRepo.Upsert(&substations[i]); err != nil {
			return 0, err
		}
	}
	return len(substations), nil
}

// ImportRiskField loads one scenario's fused risk scores and resolves the
// substation codes against the registry. Unknown codes are an error: the
// fused field must describe the same study area as the registry.
func (s *ImportService) ImportRiskField(r io.Reader, scenario models.Scenario) (int, error) {
	values, err := ingest.LoadRiskField(r, scenario)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("risk field for scenario %s contains no values", scenario)
	}

	for i := range values {
		sub, err := s.substationRepo.GetByCode(values[i].Code)
		if err != nil {
			return 0, fmt.Errorf("risk field for scenario %s: %w", scenario, err)
		}
		values[i].SubstationID = sub.ID
		if err := s.riskRepo.Upsert(values[i]); err != nil {
			return 0, err
		}
	}
	return len(values), nil
}
