package repository

import (
	"database/sql"
	"fmt"

	"github.com/floodgrid/substation-risk-go/internal/models"
)

// AnalysisTaskRepository handles database operations for analysis tasks
type AnalysisTaskRepository struct {
	db *sql.DB
}

// NewAnalysisTaskRepository creates a new analysis task repository
func NewAnalysisTaskRepository(db *sql.DB) *AnalysisTaskRepository {
	return &AnalysisTaskRepository{db: db}
}

// Create inserts a pending task and returns its id
func (r *AnalysisTaskRepository) Create(skillName, paramsJSON string) (int64, error) {
	if paramsJSON == "" {
		paramsJSON = "{}"
	}
	result, err := r.db.Exec(
		"INSERT INTO analysis_tasks (skill_name, status, params_json) VALUES (?, 'pending', ?)",
		skillName, paramsJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create analysis task: %w", err)
	}
	return result.LastInsertId()
}

// Get loads one task by id
func (r *AnalysisTaskRepository) Get(id int64) (*models.AnalysisTask, error) {
	query := `
		SELECT id, skill_name, status, progress_percent, total_units, processed_units,
			failed_units, params_json, error_message, created_at, started_at, completed_at
		FROM analysis_tasks
		WHERE id = ?
	`
	var t models.AnalysisTask
	var startedAt, completedAt sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&t.ID, &t.SkillName, &t.Status, &t.ProgressPercent, &t.TotalUnits, &t.ProcessedUnits,
		&t.FailedUnits, &t.ParamsJSON, &t.ErrorMessage, &t.CreatedAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("analysis task %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis task %d: %w", id, err)
	}

	if startedAt.Valid {
		t.StartedAt = &startedAt.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.String
	}
	return &t, nil
}

// MarkRunning marks a task as running
func (r *AnalysisTaskRepository) MarkRunning(id int64) error {
	query := `
		UPDATE analysis_tasks
		SET status = 'running', started_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, id)
	return err
}

// UpdateProgress updates a task's processed/failed counters
func (r *AnalysisTaskRepository) UpdateProgress(id int64, processed, total, failed int) error {
	percent := 0.0
	if total > 0 {
		percent = float64(processed) / float64(total) * 100.0
	}

	query := `
		UPDATE analysis_tasks
		SET processed_units = ?, total_units = ?, failed_units = ?,
		    progress_percent = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, processed, total, failed, percent, id)
	return err
}

// MarkCompleted marks a task as completed
func (r *AnalysisTaskRepository) MarkCompleted(id int64) error {
	query := `
		UPDATE analysis_tasks
		SET status = 'completed', progress_percent = 100,
		    completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, id)
	return err
}

// MarkFailed marks a task as failed with an error message
func (r *AnalysisTaskRepository) MarkFailed(id int64, errorMsg string) error {
	query := `
		UPDATE analysis_tasks
		SET status = 'failed', error_message = ?,
		    completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, errorMsg, id)
	return err
}
