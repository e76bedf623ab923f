package service

import (
	"fmt"
	"sync"

	"github.com/golang/geo/r2"
	"golang.org/x/sync/errgroup"

	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/repository"
	"github.com/floodgrid/substation-risk-go/internal/spatial"
)

// ClusterService runs the spatial autocorrelation analysis per scenario
// over the shared k-nearest-neighbor graph
type ClusterService struct {
	substationRepo *repository.SubstationRepository
	riskRepo       *repository.RiskFieldRepository
	reportRepo     *repository.ReportRepository

	neighbors    int
	scheme       spatial.WeightScheme
	permutations int
	seed         int64
}

// NewClusterService creates a new cluster service
func NewClusterService(substationRepo *repository.SubstationRepository, riskRepo *repository.RiskFieldRepository,
	reportRepo *repository.ReportRepository, neighbors, permutations int, seed int64) *ClusterService {
	return &ClusterService{
		substationRepo: substationRepo,
		riskRepo:       riskRepo,
		reportRepo:     reportRepo,
		neighbors:      neighbors,
		scheme:         spatial.RowStandardized,
		permutations:   permutations,
		seed:           seed,
	}
}

// ScenarioFailure records one scenario whose analysis failed; scenario
// faults are isolated so unrelated scenarios still complete
type ScenarioFailure struct {
	Scenario models.Scenario `json:"scenario"`
	Err      string          `json:"error"`
}

// AnalyzeAll runs the autocorrelation analysis for every scenario in
// parallel, each owning a read-only reference to the shared weight matrix.
// Reports are persisted per scenario; failures are aggregated, never
// retried (inputs are deterministic, so retry has no effect).
func (s *ClusterService) AnalyzeAll() (map[models.Scenario]*models.ClusterReport, []ScenarioFailure, error) {
	substations, err := s.substationRepo.GetAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load substations: %w", err)
	}

	graph, err := s.buildGraph(substations)
	if err != nil {
		return nil, nil, err
	}

	reports := make(map[models.Scenario]*models.ClusterReport)
	var failures []ScenarioFailure
	var mu sync.Mutex

	g := new(errgroup.Group)
	for i, scenario := range models.Scenarios() {
		i, scenario := i, scenario
		g.Go(func() error {
			// Derived per-scenario seed, recorded in the report
			seed := s.seed + int64(i)*1_000_000
			report, err := s.analyzeScenario(substations, graph, scenario, seed)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, ScenarioFailure{Scenario: scenario, Err: err.Error()})
				return nil
			}
			reports[scenario] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return reports, failures, nil
}

// AnalyzeScenario runs the analysis for a single scenario
func (s *ClusterService) AnalyzeScenario(scenario models.Scenario) (*models.ClusterReport, error) {
	substations, err := s.substationRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load substations: %w", err)
	}
	graph, err := s.buildGraph(substations)
	if err != nil {
		return nil, err
	}
	return s.analyzeScenario(substations, graph, scenario, s.seed)
}

// buildGraph constructs the k-nearest-neighbor weight matrix once; the
// topology is scenario-independent and shared read-only
func (s *ClusterService) buildGraph(substations []models.Substation) (*spatial.WeightMatrix, error) {
	points := make([]r2.Point, len(substations))
	for i, sub := range substations {
		points[i] = r2.Point{X: sub.X, Y: sub.Y}
	}
	return spatial.BuildKNN(points, s.neighbors, s.scheme)
}

func (s *ClusterService) analyzeScenario(substations []models.Substation, graph *spatial.WeightMatrix,
	scenario models.Scenario, seed int64) (*models.ClusterReport, error) {

	field, err := s.riskField(substations, scenario)
	if err != nil {
		return nil, err
	}

	cfg := spatial.DefaultSignificance(seed)
	cfg.Trials = s.permutations

	result, err := spatial.Analyze(graph, field, cfg)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario, err)
	}

	report := &models.ClusterReport{
		Scenario:      scenario,
		MoranI:        result.MoranI,
		MoranExpected: result.MoranExpected,
		MoranP:        result.MoranP,
		GearyC:        result.GearyC,
		GearyP:        result.GearyP,
		Permutations:  cfg.Trials,
		Seed:          seed,
		Neighbors:     s.neighbors,
		Locals:        make([]models.LocalCluster, len(result.Locals)),
	}
	for i, l := range result.Locals {
		report.Locals[i] = models.LocalCluster{
			SubstationID: substations[i].ID,
			Code:         substations[i].Code,
			LocalI:       l.I,
			LocalIP:      l.P,
			Quadrant:     l.Quadrant,
			GiZ:          l.GiZ,
			GiP:          l.GiP,
			GiCategory:   l.GiCategory,
		}
	}

	if err := s.reportRepo.Save(report); err != nil {
		return nil, err
	}
	return report, nil
}

// riskField aligns the scenario's stored risk values to the substation
// order of the graph. Every substation must have exactly one value; a gap
// is a configuration error, not something to default around.
func (s *ClusterService) riskField(substations []models.Substation, scenario models.Scenario) ([]float64, error) {
	values, err := s.riskRepo.GetByScenario(scenario)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]float64, len(values))
	for _, v := range values {
		byID[v.SubstationID] = v.Value
	}

	field := make([]float64, len(substations))
	for i, sub := range substations {
		v, ok := byID[sub.ID]
		if !ok {
			return nil, fmt.Errorf("scenario %s has no risk value for substation %s", scenario, sub.Code)
		}
		field[i] = v
	}
	return field, nil
}
