package models

// Analysis task statuses
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// AnalysisTask tracks one batch analysis run (vulnerability, criticality
// or clustering) with its progress and outcome
type AnalysisTask struct {
	ID              int64   `json:"id" db:"id"`
	SkillName       string  `json:"skill_name" db:"skill_name"`
	Status          string  `json:"status" db:"status"`
	ProgressPercent float64 `json:"progress_percent" db:"progress_percent"`
	TotalUnits      int     `json:"total_units" db:"total_units"`
	ProcessedUnits  int     `json:"processed_units" db:"processed_units"`
	FailedUnits     int     `json:"failed_units" db:"failed_units"`
	ParamsJSON      string  `json:"params_json,omitempty" db:"params_json"`
	ErrorMessage    string  `json:"error_message,omitempty" db:"error_message"`
	CreatedAt       string  `json:"created_at" db:"created_at"`
	StartedAt       *string `json:"started_at,omitempty" db:"started_at"`
	CompletedAt     *string `json:"completed_at,omitempty" db:"completed_at"`
}
