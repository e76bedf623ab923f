package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/floodgrid/substation-risk-go/internal/config"
	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/repository"
	"github.com/floodgrid/substation-risk-go/internal/service"
)

// ClusteringAnalyzer runs the spatial autocorrelation analysis for every
// flood scenario
type ClusteringAnalyzer struct {
	*BaseAnalyzer
	clusters *service.ClusterService
}

// NewClusteringAnalyzer creates a new spatial clustering analyzer
func NewClusteringAnalyzer(db *sql.DB, cfg *config.Config) (Analyzer, error) {
	clusters := service.NewClusterService(
		repository.NewSubstationRepository(db),
		repository.NewRiskFieldRepository(db),
		repository.NewReportRepository(db),
		cfg.Neighbors, cfg.Permutations, cfg.Seed,
	)
	return &ClusteringAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(db, "spatial_clustering"),
		clusters:     clusters,
	}, nil
}

// Analyze performs the per-scenario autocorrelation analysis. Progress is
// tracked per scenario rather than per substation.
func (a *ClusteringAnalyzer) Analyze(ctx context.Context, taskID int64) error {
	log.Printf("Starting spatial clustering analysis (task: %d)", taskID)

	return a.run(taskID, func() error {
		total := len(models.Scenarios())
		a.Tasks.UpdateProgress(taskID, 0, total, 0)

		reports, failures, err := a.clusters.AnalyzeAll()
		if err != nil {
			return err
		}

		a.Tasks.UpdateProgress(taskID, total, total, len(failures))
		log.Printf("Spatial clustering completed: %d scenarios analyzed, %d failed", len(reports), len(failures))

		if len(failures) > 0 {
			return fmt.Errorf("%d of %d scenarios failed: scenario %s: %s",
				len(failures), total, failures[0].Scenario, failures[0].Err)
		}
		return nil
	})
}

func init() {
	RegisterAnalyzer("spatial_clustering", NewClusteringAnalyzer)
}
