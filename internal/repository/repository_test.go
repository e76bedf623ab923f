package repository

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/floodgrid/substation-risk-go/internal/database"
	"github.com/floodgrid/substation-risk-go/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedSubstation(t *testing.T, repo *SubstationRepository, code string) *models.Substation {
	t.Helper()
	s := &models.Substation{
		Code:      code,
		Name:      "Test " + code,
		X:         100,
		Y:         200,
		Condition: 3,
		AgeYears:  20,
		Material:  2,
		Criteria:  map[string]float64{"power_draw": 95.2},
	}
	require.NoError(t, repo.Upsert(s))
	return s
}

func TestSubstationUpsertAndGet(t *testing.T) {
	repo := NewSubstationRepository(testDB(t))

	s := seedSubstation(t, repo, "TS-001")
	assert.NotZero(t, s.ID)

	loaded, err := repo.GetByCode("TS-001")
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "Test TS-001", loaded.Name)
	assert.Equal(t, 95.2, loaded.Criteria["power_draw"])
	assert.Nil(t, loaded.Vulnerability)

	// Upserting the same code updates in place and keeps the id
	s.AgeYears = 21
	require.NoError(t, repo.Upsert(s))
	updated, err := repo.GetByCode("TS-001")
	require.NoError(t, err)
	assert.Equal(t, s.ID, updated.ID)
	assert.Equal(t, 21.0, updated.AgeYears)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubstationGetAllOrderedByCode(t *testing.T) {
	repo := NewSubstationRepository(testDB(t))
	seedSubstation(t, repo, "TS-003")
	seedSubstation(t, repo, "TS-001")
	seedSubstation(t, repo, "TS-002")

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "TS-001", all[0].Code)
	assert.Equal(t, "TS-002", all[1].Code)
	assert.Equal(t, "TS-003", all[2].Code)
}

func TestSubstationGetByCodeNotFound(t *testing.T) {
	repo := NewSubstationRepository(testDB(t))
	_, err := repo.GetByCode("TS-404")
	assert.ErrorContains(t, err, "not found")
}

func TestSubstationUpdateScores(t *testing.T) {
	repo := NewSubstationRepository(testDB(t))
	s := seedSubstation(t, repo, "TS-001")

	v := 0.42
	require.NoError(t, repo.UpdateScores(s.ID, &v, nil))

	loaded, err := repo.GetByCode("TS-001")
	require.NoError(t, err)
	require.NotNil(t, loaded.Vulnerability)
	assert.Equal(t, 0.42, *loaded.Vulnerability)
	assert.Nil(t, loaded.Criticality, "nil score must not clobber the stored value")

	c := 0.7
	require.NoError(t, repo.UpdateScores(s.ID, nil, &c))
	loaded, err = repo.GetByCode("TS-001")
	require.NoError(t, err)
	assert.Equal(t, 0.42, *loaded.Vulnerability)
	assert.Equal(t, 0.7, *loaded.Criticality)
}

func TestRiskFieldUpsertAndGet(t *testing.T) {
	db := testDB(t)
	subRepo := NewSubstationRepository(db)
	riskRepo := NewRiskFieldRepository(db)

	a := seedSubstation(t, subRepo, "TS-002")
	b := seedSubstation(t, subRepo, "TS-001")

	require.NoError(t, riskRepo.Upsert(models.RiskValue{SubstationID: a.ID, Scenario: models.ScenarioRare, Value: 0.8}))
	require.NoError(t, riskRepo.Upsert(models.RiskValue{SubstationID: b.ID, Scenario: models.ScenarioRare, Value: 0.3}))
	// Re-import overwrites
	require.NoError(t, riskRepo.Upsert(models.RiskValue{SubstationID: a.ID, Scenario: models.ScenarioRare, Value: 0.9}))

	values, err := riskRepo.GetByScenario(models.ScenarioRare)
	require.NoError(t, err)
	require.Len(t, values, 2)

	// Ordered by substation code, the graph's stable order
	assert.Equal(t, "TS-001", values[0].Code)
	assert.Equal(t, 0.3, values[0].Value)
	assert.Equal(t, "TS-002", values[1].Code)
	assert.Equal(t, 0.9, values[1].Value)

	other, err := riskRepo.GetByScenario(models.ScenarioExtreme)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestReportSaveAndGet(t *testing.T) {
	db := testDB(t)
	subRepo := NewSubstationRepository(db)
	reportRepo := NewReportRepository(db)

	s := seedSubstation(t, subRepo, "TS-001")

	report := &models.ClusterReport{
		Scenario:      models.ScenarioExceptional,
		MoranI:        1.0 / 3.0,
		MoranExpected: -0.25,
		MoranP:        0.02,
		GearyC:        0.5,
		GearyP:        0.04,
		Permutations:  999,
		Seed:          20260112,
		Neighbors:     5,
		Locals: []models.LocalCluster{
			{SubstationID: s.ID, Code: s.Code, LocalI: 2.0 / 3.0, LocalIP: 0.03,
				Quadrant: models.QuadrantLL, GiZ: -2, GiP: 0.05, GiCategory: models.GiColdSpot95},
		},
	}
	require.NoError(t, reportRepo.Save(report))

	loaded, err := reportRepo.GetByScenario(models.ScenarioExceptional)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, loaded.MoranI, 1e-12)
	assert.Equal(t, 999, loaded.Permutations)
	require.Len(t, loaded.Locals, 1)
	assert.Equal(t, "TS-001", loaded.Locals[0].Code)
	assert.Equal(t, models.QuadrantLL, loaded.Locals[0].Quadrant)
	assert.Equal(t, 0.05, loaded.Locals[0].GiP)

	// Re-running a scenario replaces its report
	report.MoranI = 0.5
	require.NoError(t, reportRepo.Save(report))
	loaded, err = reportRepo.GetByScenario(models.ScenarioExceptional)
	require.NoError(t, err)
	assert.Equal(t, 0.5, loaded.MoranI)
	assert.Len(t, loaded.Locals, 1)
}

func TestAnalysisTaskLifecycle(t *testing.T) {
	repo := NewAnalysisTaskRepository(testDB(t))

	id, err := repo.Create("vulnerability_scoring", "")
	require.NoError(t, err)

	task, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.Status)
	assert.Equal(t, "{}", task.ParamsJSON)
	assert.Nil(t, task.StartedAt)

	require.NoError(t, repo.MarkRunning(id))
	require.NoError(t, repo.UpdateProgress(id, 50, 200, 3))

	task, err = repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.TaskRunning, task.Status)
	assert.Equal(t, 50, task.ProcessedUnits)
	assert.Equal(t, 200, task.TotalUnits)
	assert.Equal(t, 3, task.FailedUnits)
	assert.InDelta(t, 25.0, task.ProgressPercent, 1e-9)
	assert.NotNil(t, task.StartedAt)

	require.NoError(t, repo.MarkCompleted(id))
	task, err = repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	assert.Equal(t, 100.0, task.ProgressPercent)
	assert.NotNil(t, task.CompletedAt)
}

func TestAnalysisTaskFailure(t *testing.T) {
	repo := NewAnalysisTaskRepository(testDB(t))

	id, err := repo.Create("spatial_clustering", "")
	require.NoError(t, err)
	require.NoError(t, repo.MarkRunning(id))
	require.NoError(t, repo.MarkFailed(id, "scenario rare has no risk value for substation TS-001"))

	task, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.TaskFailed, task.Status)
	assert.Contains(t, task.ErrorMessage, "TS-001")

	_, err = repo.Get(id + 999)
	assert.ErrorContains(t, err, "not found")
}

func TestSubstationCriteriaRoundTrip(t *testing.T) {
	repo := NewSubstationRepository(testDB(t))

	s := &models.Substation{
		Code: "TS-007", X: 1, Y: 2, Condition: 1, AgeYears: 5, Material: 1,
		Criteria: map[string]float64{"residents": 210, "commerce": 6},
	}
	require.NoError(t, repo.Upsert(s))

	loaded, err := repo.GetByCode("TS-007")
	require.NoError(t, err)
	assert.Equal(t, 210.0, loaded.Criteria["residents"])
	assert.Equal(t, 6.0, loaded.Criteria["commerce"])
	assert.False(t, math.IsNaN(loaded.Criteria["residents"]))
}
