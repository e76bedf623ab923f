package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/floodgrid/substation-risk-go/internal/config"
	"github.com/floodgrid/substation-risk-go/internal/repository"
	"github.com/floodgrid/substation-risk-go/internal/service"
)

// VulnerabilityAnalyzer runs the fuzzy health-index scoring over the
// asset registry
type VulnerabilityAnalyzer struct {
	*BaseAnalyzer
	risk *service.RiskService
}

// NewVulnerabilityAnalyzer creates a new vulnerability scoring analyzer
func NewVulnerabilityAnalyzer(db *sql.DB, cfg *config.Config) (Analyzer, error) {
	fuzzyEngine, ahpEngine, _, err := service.BuildEngines(cfg)
	if err != nil {
		return nil, err
	}
	return &VulnerabilityAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(db, "vulnerability_scoring"),
		risk:         service.NewRiskService(repository.NewSubstationRepository(db), fuzzyEngine, ahpEngine),
	}, nil
}

// Analyze performs the vulnerability scoring
func (a *VulnerabilityAnalyzer) Analyze(ctx context.Context, taskID int64) error {
	log.Printf("Starting vulnerability scoring (task: %d)", taskID)

	return a.run(taskID, func() error {
		summary, err := a.risk.ScoreVulnerability(func(processed, total, failed int) {
			a.Tasks.UpdateProgress(taskID, processed, total, failed)
		})
		if err != nil {
			return err
		}

		log.Printf("Vulnerability scoring completed: %d scored, %d failed", summary.Scored, summary.Failed)
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d substations failed: first failure %s: %s",
				summary.Failed, summary.Total, summary.Failures[0].Code, summary.Failures[0].Err)
		}
		return nil
	})
}

func init() {
	RegisterAnalyzer("vulnerability_scoring", NewVulnerabilityAnalyzer)
}
