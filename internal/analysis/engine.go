package analysis

import (
	"context"
	"database/sql"

	"github.com/floodgrid/substation-risk-go/internal/config"
	"github.com/floodgrid/substation-risk-go/internal/repository"
)

// Analyzer is the interface that all analysis skills must implement
type Analyzer interface {
	// Analyze performs the analysis for a given task
	Analyze(ctx context.Context, taskID int64) error

	// GetProgress returns the current progress of the analysis
	GetProgress(taskID int64) (*Progress, error)

	// GetName returns the name of the analyzer
	GetName() string
}

// Progress represents the progress of an analysis task
type Progress struct {
	Status    string  // pending, running, completed, failed
	Processed int     // Number of substations processed
	Total     int     // Total number of substations to process
	Failed    int     // Number of failed substations
	Percent   float64 // Progress percentage (0-100)
	Message   string  // Error message when failed
}

// BaseAnalyzer provides common functionality for all analyzers
type BaseAnalyzer struct {
	Tasks *repository.AnalysisTaskRepository
	Name  string
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(db *sql.DB, name string) *BaseAnalyzer {
	return &BaseAnalyzer{
		Tasks: repository.NewAnalysisTaskRepository(db),
		Name:  name,
	}
}

// GetName returns the analyzer name
func (a *BaseAnalyzer) GetName() string {
	return a.Name
}

// GetProgress reads the task's persisted progress
func (a *BaseAnalyzer) GetProgress(taskID int64) (*Progress, error) {
	task, err := a.Tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	return &Progress{
		Status:    task.Status,
		Processed: task.ProcessedUnits,
		Total:     task.TotalUnits,
		Failed:    task.FailedUnits,
		Percent:   task.ProgressPercent,
		Message:   task.ErrorMessage,
	}, nil
}

// run wraps an analysis body with the task lifecycle transitions
func (a *BaseAnalyzer) run(taskID int64, body func() error) error {
	if err := a.Tasks.MarkRunning(taskID); err != nil {
		return err
	}
	if err := body(); err != nil {
		a.Tasks.MarkFailed(taskID, err.Error())
		return err
	}
	return a.Tasks.MarkCompleted(taskID)
}

// AnalyzerFactory is a function that creates an analyzer instance
type AnalyzerFactory func(db *sql.DB, cfg *config.Config) (Analyzer, error)

// AnalyzerRegistry maps skill names to analyzer factories
var AnalyzerRegistry = make(map[string]AnalyzerFactory)

// RegisterAnalyzer registers an analyzer factory for a skill name
func RegisterAnalyzer(skillName string, factory AnalyzerFactory) {
	AnalyzerRegistry[skillName] = factory
}

// GetAnalyzer retrieves an analyzer instance for a skill name
func GetAnalyzer(skillName string, db *sql.DB, cfg *config.Config) (Analyzer, error) {
	factory, ok := AnalyzerRegistry[skillName]
	if !ok {
		return nil, nil
	}
	return factory(db, cfg)
}

// SkillNames returns the registered skill names
func SkillNames() []string {
	names := make([]string, 0, len(AnalyzerRegistry))
	for name := range AnalyzerRegistry {
		names = append(names, name)
	}
	return names
}
