package service

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/floodgrid/substation-risk-go/internal/ahp"
	"github.com/floodgrid/substation-risk-go/internal/fuzzy"
	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/normalize"
	"github.com/floodgrid/substation-risk-go/internal/repository"
)

// ScoreFailure records one substation whose scoring failed. Failures are
// isolated per substation: one bad unit never aborts the batch.
type ScoreFailure struct {
	Code string `json:"code"`
	Err  string `json:"error"`
}

// ScoreSummary aggregates the outcome of a batch scoring run
type ScoreSummary struct {
	Total    int            `json:"total"`
	Scored   int            `json:"scored"`
	Failed   int            `json:"failed"`
	Failures []ScoreFailure `json:"failures,omitempty"`
}

// RiskService computes the scenario-independent vulnerability and
// criticality scores for every substation
type RiskService struct {
	substationRepo *repository.SubstationRepository
	fuzzyEngine    *fuzzy.Engine
	ahpEngine      *ahp.Engine
}

// NewRiskService creates a new risk service
func NewRiskService(substationRepo *repository.SubstationRepository, fuzzyEngine *fuzzy.Engine, ahpEngine *ahp.Engine) *RiskService {
	return &RiskService{
		substationRepo: substationRepo,
		fuzzyEngine:    fuzzyEngine,
		ahpEngine:      ahpEngine,
	}
}

// Weights returns the derived AHP weight vector and consistency audit
func (s *RiskService) Weights() *ahp.WeightReport {
	return s.ahpEngine.Report()
}

// ScoreVulnerability runs the fuzzy health-index engine over every
// substation and persists the scores
func (s *RiskService) ScoreVulnerability(onProgress func(processed, total, failed int)) (*ScoreSummary, error) {
	return s.runBatch(onProgress, func(sub *models.Substation, _ map[string]normalize.Range) error {
		v, err := s.fuzzyEngine.Score(map[string]float64{
			fuzzy.VarCondition: sub.Condition,
			fuzzy.VarAge:       sub.AgeYears,
			fuzzy.VarMaterial:  sub.Material,
		})
		if err != nil {
			return err
		}
		sub.Vulnerability = &v
		return nil
	})
}

// ScoreCriticality runs the AHP important-index engine over every
// substation and persists the scores. Criteria with rating bands use the
// ordinal band scale; otherwise values are min-max normalized against the
// observed study-area ranges.
func (s *RiskService) ScoreCriticality(onProgress func(processed, total, failed int)) (*ScoreSummary, error) {
	return s.runBatch(onProgress, func(sub *models.Substation, ranges map[string]normalize.Range) error {
		var c float64
		var err error
		if allBanded(s.ahpEngine.Criteria()) {
			c, err = s.ahpEngine.ScoreBands(sub.Criteria)
		} else {
			c, err = s.ahpEngine.ScoreMinMax(sub.Criteria, ranges)
		}
		if err != nil {
			return err
		}
		sub.Criticality = &c
		return nil
	})
}

// ScoreAll runs both engines in one pass. The merged summary counts each
// substation once: a unit failing both passes contributes a single failure
// entry, and Scored counts units that received both scores.
func (s *RiskService) ScoreAll(onProgress func(processed, total, failed int)) (*ScoreSummary, error) {
	vuln, err := s.ScoreVulnerability(nil)
	if err != nil {
		return nil, err
	}
	crit, err := s.ScoreCriticality(onProgress)
	if err != nil {
		return nil, err
	}

	merged := &ScoreSummary{Total: crit.Total}
	failed := make(map[string]bool, len(vuln.Failures))
	for _, f := range vuln.Failures {
		failed[f.Code] = true
		merged.Failures = append(merged.Failures, f)
	}
	for _, f := range crit.Failures {
		if failed[f.Code] {
			continue
		}
		failed[f.Code] = true
		merged.Failures = append(merged.Failures, f)
	}
	merged.Failed = len(merged.Failures)
	merged.Scored = merged.Total - merged.Failed
	return merged, nil
}

// runBatch applies one scoring function to every substation in parallel.
// Substations are independent, so inference shares no mutable state; a
// failed substation is recorded with its identifier and skipped at
// persistence, never silently defaulted.
func (s *RiskService) runBatch(onProgress func(processed, total, failed int),
	score func(*models.Substation, map[string]normalize.Range) error) (*ScoreSummary, error) {

	substations, err := s.substationRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load substations: %w", err)
	}
	if len(substations) == 0 {
		return nil, fmt.Errorf("no substations loaded, import the asset registry first")
	}

	ranges := s.criterionRanges(substations)

	failures := make([]error, len(substations))
	var mu sync.Mutex
	processed, failed := 0, 0

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i := range substations {
		i := i
		g.Go(func() error {
			err := score(&substations[i], ranges)
			failures[i] = err

			mu.Lock()
			processed++
			if err != nil {
				failed++
			}
			if onProgress != nil {
				onProgress(processed, len(substations), failed)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &ScoreSummary{Total: len(substations)}
	for i := range substations {
		if failures[i] != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, ScoreFailure{Code: substations[i].Code, Err: failures[i].Error()})
			continue
		}
		if err := s.substationRepo.UpdateScores(substations[i].ID, substations[i].Vulnerability, substations[i].Criticality); err != nil {
			return nil, err
		}
		summary.Scored++
	}

	return summary, nil
}

// criterionRanges computes the observed min/max of every criterion across
// the study area, used by the min-max normalization path
func (s *RiskService) criterionRanges(substations []models.Substation) map[string]normalize.Range {
	ranges := make(map[string]normalize.Range)
	for _, c := range s.ahpEngine.Criteria() {
		values := make([]float64, 0, len(substations))
		for _, sub := range substations {
			if v, ok := sub.Criteria[c.Name]; ok && v == v {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			ranges[c.Name] = normalize.RangeOf(values)
		}
	}
	return ranges
}

func allBanded(criteria []models.Criterion) bool {
	for _, c := range criteria {
		if !c.HasBands() {
			return false
		}
	}
	return true
}
