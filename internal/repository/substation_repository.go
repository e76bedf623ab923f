package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/floodgrid/substation-risk-go/internal/models"
)

// SubstationRepository handles database operations for substations
type SubstationRepository struct {
	db *sql.DB
}

// NewSubstationRepository creates a new substation repository
func NewSubstationRepository(db *sql.DB) *SubstationRepository {
	return &SubstationRepository{db: db}
}

// Upsert inserts or updates a substation by its external code
func (r *SubstationRepository) Upsert(s *models.Substation) error {
	criteriaJSON, err := json.Marshal(s.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria for %s: %w", s.Code, err)
	}

	query := `
		INSERT INTO substations (code, name, x, y, condition, age_years, material, criteria_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			x = excluded.x,
			y = excluded.y,
			condition = excluded.condition,
			age_years = excluded.age_years,
			material = excluded.material,
			criteria_json = excluded.criteria_json,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, s.Code, s.Name, s.X, s.Y, s.Condition, s.AgeYears, s.Material, string(criteriaJSON)); err != nil {
		return fmt.Errorf("failed to upsert substation %s: %w", s.Code, err)
	}

	return r.db.QueryRow("SELECT id FROM substations WHERE code = ?", s.Code).Scan(&s.ID)
}

// GetAll returns all substations ordered by code
func (r *SubstationRepository) GetAll() ([]models.Substation, error) {
	query := `
		SELECT id, code, name, x, y, condition, age_years, material, criteria_json, vulnerability, criticality
		FROM substations
		ORDER BY code
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query substations: %w", err)
	}
	defer rows.Close()

	var result []models.Substation
	for rows.Next() {
		s, err := scanSubstation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// GetByCode returns one substation by its external code
func (r *SubstationRepository) GetByCode(code string) (*models.Substation, error) {
	query := `
		SELECT id, code, name, x, y, condition, age_years, material, criteria_json, vulnerability, criticality
		FROM substations
		WHERE code = ?
	`
	row := r.db.QueryRow(query, code)
	s, err := scanSubstation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("substation %s not found", code)
	}
	return s, err
}

// Count returns the number of substations
func (r *SubstationRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM substations").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count substations: %w", err)
	}
	return n, nil
}

// UpdateScores stores the derived vulnerability and criticality scores
func (r *SubstationRepository) UpdateScores(id int64, vulnerability, criticality *float64) error {
	query := `
		UPDATE substations
		SET vulnerability = COALESCE(?, vulnerability),
		    criticality = COALESCE(?, criticality),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, vulnerability, criticality, id); err != nil {
		return fmt.Errorf("failed to update scores for substation %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubstation(row rowScanner) (*models.Substation, error) {
	var s models.Substation
	var criteriaJSON string
	var vulnerability, criticality sql.NullFloat64

	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.X, &s.Y, &s.Condition, &s.AgeYears, &s.Material,
		&criteriaJSON, &vulnerability, &criticality)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(criteriaJSON), &s.Criteria); err != nil {
		return nil, fmt.Errorf("failed to decode criteria for substation %s: %w", s.Code, err)
	}
	if vulnerability.Valid {
		s.Vulnerability = &vulnerability.Float64
	}
	if criticality.Valid {
		s.Criticality = &criticality.Float64
	}

	return &s, nil
}
