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

// CriticalityAnalyzer runs the AHP important-index scoring over the
// asset registry
type CriticalityAnalyzer struct {
	*BaseAnalyzer
	risk *service.RiskService
}

// NewCriticalityAnalyzer creates a new criticality scoring analyzer
func NewCriticalityAnalyzer(db *sql.DB, cfg *config.Config) (Analyzer, error) {
	fuzzyEngine, ahpEngine, _, err := service.BuildEngines(cfg)
	if err != nil {
		return nil, err
	}
	return &CriticalityAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(db, "criticality_scoring"),
		risk:         service.NewRiskService(repository.NewSubstationRepository(db), fuzzyEngine, ahpEngine),
	}, nil
}

// Analyze performs the criticality scoring
func (a *CriticalityAnalyzer) Analyze(ctx context.Context, taskID int64) error {
	log.Printf("Starting criticality scoring (task: %d)", taskID)

	return a.run(taskID, func() error {
		summary, err := a.risk.ScoreCriticality(func(processed, total, failed int) {
			a.Tasks.UpdateProgress(taskID, processed, total, failed)
		})
		if err != nil {
			return err
		}

		log.Printf("Criticality scoring completed: %d scored, %d failed", summary.Scored, summary.Failed)
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d substations failed: first failure %s: %s",
				summary.Failed, summary.Total, summary.Failures[0].Code, summary.Failures[0].Err)
		}
		return nil
	})
}

func init() {
	RegisterAnalyzer("criticality_scoring", NewCriticalityAnalyzer)
}
