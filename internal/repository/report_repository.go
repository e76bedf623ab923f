package repository

import (
	"database/sql"
	"fmt"

	"github.com/floodgrid/substation-risk-go/internal/models"
)

// ReportRepository handles database operations for autocorrelation reports
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save replaces the stored report of the scenario with the given one
func (r *ReportRepository) Save(report *models.ClusterReport) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin report transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM cluster_reports WHERE scenario = ?", report.Scenario); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear report for scenario %s: %w", report.Scenario, err)
	}

	query := `
		INSERT INTO cluster_reports (scenario, moran_i, moran_expected, moran_pseudo_p,
			geary_c, geary_pseudo_p, permutations, seed, neighbors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query, report.Scenario, report.MoranI, report.MoranExpected, report.MoranP,
		report.GearyC, report.GearyP, report.Permutations, report.Seed, report.Neighbors)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert report for scenario %s: %w", report.Scenario, err)
	}

	localQuery := `
		INSERT INTO local_clusters (scenario, substation_id, local_i, local_i_pseudo_p, quadrant, gi_z, gi_pseudo_p, gi_category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, l := range report.Locals {
		_, err = tx.Exec(localQuery, report.Scenario, l.SubstationID, l.LocalI, l.LocalIP, l.Quadrant, l.GiZ, l.GiP, l.GiCategory)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert local cluster for substation %d: %w", l.SubstationID, err)
		}
	}

	return tx.Commit()
}

// GetByScenario loads the stored report of one scenario
func (r *ReportRepository) GetByScenario(scenario models.Scenario) (*models.ClusterReport, error) {
	report := &models.ClusterReport{Scenario: scenario}

	query := `
		SELECT moran_i, moran_expected, moran_pseudo_p, geary_c, geary_pseudo_p,
			permutations, seed, neighbors
		FROM cluster_reports
		WHERE scenario = ?
	`
	err := r.db.QueryRow(query, scenario).Scan(&report.MoranI, &report.MoranExpected, &report.MoranP,
		&report.GearyC, &report.GearyP, &report.Permutations, &report.Seed, &report.Neighbors)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no cluster report for scenario %s", scenario)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report for scenario %s: %w", scenario, err)
	}

	localQuery := `
		SELECT lc.substation_id, s.code, lc.local_i, lc.local_i_pseudo_p, lc.quadrant, lc.gi_z, lc.gi_pseudo_p, lc.gi_category
		FROM local_clusters lc
		JOIN substations s ON s.id = lc.substation_id
		WHERE lc.scenario = ?
		ORDER BY s.code
	`
	rows, err := r.db.Query(localQuery, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to query local clusters for scenario %s: %w", scenario, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.LocalCluster
		if err := rows.Scan(&l.SubstationID, &l.Code, &l.LocalI, &l.LocalIP, &l.Quadrant, &l.GiZ, &l.GiP, &l.GiCategory); err != nil {
			return nil, fmt.Errorf("failed to scan local cluster: %w", err)
		}
		report.Locals = append(report.Locals, l)
	}
	return report, rows.Err()
}
