package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered schema history, applied at init
var migrations = []Migration{
	{
		Version: 1,
		Name:    "substations",
		SQL: `
			CREATE TABLE IF NOT EXISTS substations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				code TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL DEFAULT '',
				x REAL NOT NULL,
				y REAL NOT NULL,
				condition REAL NOT NULL,
				age_years REAL NOT NULL,
				material REAL NOT NULL,
				criteria_json TEXT NOT NULL DEFAULT '{}',
				vulnerability REAL,
				criticality REAL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_substations_code ON substations(code);
		`,
	},
	{
		Version: 2,
		Name:    "risk_fields",
		SQL: `
			CREATE TABLE IF NOT EXISTS risk_values (
				substation_id INTEGER NOT NULL REFERENCES substations(id) ON DELETE CASCADE,
				scenario TEXT NOT NULL,
				value REAL NOT NULL,
				PRIMARY KEY (substation_id, scenario)
			);
		`,
	},
	{
		Version: 3,
		Name:    "cluster_reports",
		SQL: `
			CREATE TABLE IF NOT EXISTS cluster_reports (
				scenario TEXT PRIMARY KEY,
				moran_i REAL NOT NULL,
				moran_expected REAL NOT NULL,
				moran_pseudo_p REAL NOT NULL,
				geary_c REAL NOT NULL,
				geary_pseudo_p REAL NOT NULL,
				permutations INTEGER NOT NULL,
				seed INTEGER NOT NULL,
				neighbors INTEGER NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE TABLE IF NOT EXISTS local_clusters (
				scenario TEXT NOT NULL REFERENCES cluster_reports(scenario) ON DELETE CASCADE,
				substation_id INTEGER NOT NULL REFERENCES substations(id) ON DELETE CASCADE,
				local_i REAL NOT NULL,
				local_i_pseudo_p REAL NOT NULL,
				quadrant TEXT NOT NULL,
				gi_z REAL NOT NULL,
				gi_pseudo_p REAL NOT NULL,
				gi_category TEXT NOT NULL,
				PRIMARY KEY (scenario, substation_id)
			);
		`,
	},
	{
		Version: 4,
		Name:    "analysis_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS analysis_tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				skill_name TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				progress_percent REAL NOT NULL DEFAULT 0,
				total_units INTEGER NOT NULL DEFAULT 0,
				processed_units INTEGER NOT NULL DEFAULT 0,
				failed_units INTEGER NOT NULL DEFAULT 0,
				params_json TEXT NOT NULL DEFAULT '{}',
				error_message TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				completed_at TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
}

// Migrate applies all pending migrations in version order
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		log.Printf("Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
