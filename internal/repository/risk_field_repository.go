package repository

import (
	"database/sql"
	"fmt"

	"github.com/floodgrid/substation-risk-go/internal/models"
)

// RiskFieldRepository handles database operations for per-scenario risk
// values produced by the external GIS fusion step
type RiskFieldRepository struct {
	db *sql.DB
}

// NewRiskFieldRepository creates a new risk field repository
func NewRiskFieldRepository(db *sql.DB) *RiskFieldRepository {
	return &RiskFieldRepository{db: db}
}

// Upsert stores one risk value for a substation under a scenario
func (r *RiskFieldRepository) Upsert(v models.RiskValue) error {
	query := `
		INSERT INTO risk_values (substation_id, scenario, value)
		VALUES (?, ?, ?)
		ON CONFLICT(substation_id, scenario) DO UPDATE SET value = excluded.value
	`
	if _, err := r.db.Exec(query, v.SubstationID, v.Scenario, v.Value); err != nil {
		return fmt.Errorf("failed to upsert risk value for substation %d scenario %s: %w", v.SubstationID, v.Scenario, err)
	}
	return nil
}

// GetByScenario returns the risk field of one scenario ordered by
// substation code (the stable identifier order the spatial graph uses)
func (r *RiskFieldRepository) GetByScenario(scenario models.Scenario) ([]models.RiskValue, error) {
	query := `
		SELECT rv.substation_id, s.code, rv.scenario, rv.value
		FROM risk_values rv
		JOIN substations s ON s.id = rv.substation_id
		WHERE rv.scenario = ?
		ORDER BY s.code
	`
	rows, err := r.db.Query(query, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk field for scenario %s: %w", scenario, err)
	}
	defer rows.Close()

	var result []models.RiskValue
	for rows.Next() {
		var v models.RiskValue
		if err := rows.Scan(&v.SubstationID, &v.Code, &v.Scenario, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan risk value: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
