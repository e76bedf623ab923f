package service

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/floodgrid/substation-risk-go/internal/ahp"
	"github.com/floodgrid/substation-risk-go/internal/config"
	"github.com/floodgrid/substation-risk-go/internal/database"
	"github.com/floodgrid/substation-risk-go/internal/fuzzy"
	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/repository"
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

func testRiskService(t *testing.T, db *sql.DB) *RiskService {
	t.Helper()
	fuzzyEngine, ahpEngine, _, err := BuildEngines(&config.Config{})
	require.NoError(t, err)
	return NewRiskService(repository.NewSubstationRepository(db), fuzzyEngine, ahpEngine)
}

func seed(t *testing.T, db *sql.DB, s models.Substation) {
	t.Helper()
	if s.Criteria == nil {
		s.Criteria = map[string]float64{
			ahp.CriterionPowerDraw:      95,
			ahp.CriterionGridNodeRating: 0.5,
			ahp.CriterionResidents:      200,
			ahp.CriterionCommerce:       6,
			ahp.CriterionInfrastructure: 1,
		}
	}
	require.NoError(t, repository.NewSubstationRepository(db).Upsert(&s))
}

func TestScoreAllPersistsScores(t *testing.T) {
	db := testDB(t)
	seed(t, db, models.Substation{Code: "TS-001", X: 0, Y: 0, Condition: 1, AgeYears: 5, Material: 1})
	seed(t, db, models.Substation{Code: "TS-002", X: 1, Y: 0, Condition: 5, AgeYears: 80, Material: 3})

	svc := testRiskService(t, db)

	var lastProcessed, lastTotal int
	summary, err := svc.ScoreAll(func(processed, total, failed int) {
		lastProcessed, lastTotal = processed, total
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Scored)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, lastTotal, lastProcessed)

	repo := repository.NewSubstationRepository(db)
	healthy, err := repo.GetByCode("TS-001")
	require.NoError(t, err)
	degraded, err := repo.GetByCode("TS-002")
	require.NoError(t, err)

	require.NotNil(t, healthy.Vulnerability)
	require.NotNil(t, degraded.Vulnerability)
	assert.Less(t, *healthy.Vulnerability, *degraded.Vulnerability)
	assert.GreaterOrEqual(t, *healthy.Vulnerability, 0.0)
	assert.LessOrEqual(t, *degraded.Vulnerability, 1.0)

	require.NotNil(t, healthy.Criticality)
	require.NotNil(t, degraded.Criticality)
}

func TestScoreAllIsolatesFailures(t *testing.T) {
	db := testDB(t)
	seed(t, db, models.Substation{Code: "TS-001", X: 0, Y: 0, Condition: 2, AgeYears: 10, Material: 1})
	// Out-of-domain condition rating: no fuzzy rule can fire
	seed(t, db, models.Substation{Code: "TS-BAD", X: 1, Y: 0, Condition: 99, AgeYears: 10, Material: 1})

	svc := testRiskService(t, db)
	summary, err := svc.ScoreVulnerability(nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Scored)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "TS-BAD", summary.Failures[0].Code)
	assert.Contains(t, summary.Failures[0].Err, "no fuzzy rule fired")

	repo := repository.NewSubstationRepository(db)
	good, err := repo.GetByCode("TS-001")
	require.NoError(t, err)
	assert.NotNil(t, good.Vulnerability, "one bad unit must not block the batch")

	bad, err := repo.GetByCode("TS-BAD")
	require.NoError(t, err)
	assert.Nil(t, bad.Vulnerability)
}

func TestScoreAllCountsUnitOnce(t *testing.T) {
	db := testDB(t)

	// Bandless criteria force the min-max path, which rejects a missing
	// criterion value
	criteria := []models.Criterion{
		{Name: "load", Category: models.CategoryTechnical, Direction: models.DirectionBenefit},
		{Name: "residents", Category: models.CategoryUtility, Direction: models.DirectionBenefit},
	}
	m, err := ahp.NewPairwiseMatrix([]string{"load", "residents"}, [][]float64{{1, 3}, {1.0 / 3.0, 1}})
	require.NoError(t, err)
	ahpEngine, err := ahp.NewEngine(criteria, m)
	require.NoError(t, err)
	fuzzyEngine, err := fuzzy.DefaultCalibration().Build()
	require.NoError(t, err)

	repo := repository.NewSubstationRepository(db)
	require.NoError(t, repo.Upsert(&models.Substation{
		Code: "TS-001", X: 0, Y: 0, Condition: 2, AgeYears: 10, Material: 1,
		Criteria: map[string]float64{"load": 40, "residents": 100},
	}))
	require.NoError(t, repo.Upsert(&models.Substation{
		Code: "TS-002", X: 1, Y: 0, Condition: 2, AgeYears: 12, Material: 1,
		Criteria: map[string]float64{"load": 80, "residents": 300},
	}))
	// Fails both passes: out-of-domain condition and a missing criterion
	require.NoError(t, repo.Upsert(&models.Substation{
		Code: "TS-BAD", X: 2, Y: 0, Condition: 99, AgeYears: 10, Material: 1,
		Criteria: map[string]float64{"load": 50},
	}))

	svc := NewRiskService(repo, fuzzyEngine, ahpEngine)
	summary, err := svc.ScoreAll(nil)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Scored)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "TS-BAD", summary.Failures[0].Code)
}

func TestScoreAllEmptyRegistry(t *testing.T) {
	svc := testRiskService(t, testDB(t))
	_, err := svc.ScoreAll(nil)
	assert.ErrorContains(t, err, "no substations")
}

func TestWeightsAudit(t *testing.T) {
	svc := testRiskService(t, testDB(t))

	report := svc.Weights()
	require.NotNil(t, report)
	assert.Less(t, report.CR, ahp.ConsistencyThreshold)
	assert.Len(t, report.Weights, 5)
}

const testRegistryCSV = `code,x,y,condition,age_years,material,power_draw,grid_node_rating,residents,commerce,critical_infrastructure
TS-001,0,0,2,12,1,95.2,0.5,210,6,1
TS-002,1,0,4,38,3,60.0,0,80,2,0
`

func TestImportRegistry(t *testing.T) {
	db := testDB(t)
	criteria := ahp.DefaultCriteria()
	svc := NewImportService(repository.NewSubstationRepository(db), repository.NewRiskFieldRepository(db), criteria)

	count, err := svc.ImportRegistry(strings.NewReader(testRegistryCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := repository.NewSubstationRepository(db).GetByCode("TS-002")
	require.NoError(t, err)
	assert.Equal(t, 38.0, loaded.AgeYears)
}

func TestImportRiskField(t *testing.T) {
	db := testDB(t)
	criteria := ahp.DefaultCriteria()
	svc := NewImportService(repository.NewSubstationRepository(db), repository.NewRiskFieldRepository(db), criteria)

	_, err := svc.ImportRegistry(strings.NewReader(testRegistryCSV))
	require.NoError(t, err)

	count, err := svc.ImportRiskField(strings.NewReader("code,value\nTS-001,0.4\nTS-002,0.9\n"), models.ScenarioRare)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	values, err := repository.NewRiskFieldRepository(db).GetByScenario(models.ScenarioRare)
	require.NoError(t, err)
	assert.Len(t, values, 2)
}

func TestImportRiskFieldUnknownCode(t *testing.T) {
	db := testDB(t)
	svc := NewImportService(repository.NewSubstationRepository(db), repository.NewRiskFieldRepository(db), ahp.DefaultCriteria())

	_, err := svc.ImportRiskField(strings.NewReader("code,value\nTS-404,0.4\n"), models.ScenarioRare)
	assert.ErrorContains(t, err, "TS-404")
}

func seedLine(t *testing.T, db *sql.DB) {
	t.Helper()
	values := []float64{1, 1, 1, 5, 5}
	riskRepo := repository.NewRiskFieldRepository(db)
	for i, v := range values {
		s := models.Substation{
			Code: "TS-00" + string(rune('1'+i)), X: float64(i), Y: 0,
			Condition: 2, AgeYears: 10, Material: 1,
		}
		seed(t, db, s)

		loaded, err := repository.NewSubstationRepository(db).GetByCode(s.Code)
		require.NoError(t, err)
		require.NoError(t, riskRepo.Upsert(models.RiskValue{
			SubstationID: loaded.ID, Scenario: models.ScenarioRare, Value: v,
		}))
	}
}

func TestAnalyzeScenario(t *testing.T) {
	db := testDB(t)
	seedLine(t, db)

	svc := NewClusterService(
		repository.NewSubstationRepository(db),
		repository.NewRiskFieldRepository(db),
		repository.NewReportRepository(db),
		2, 99, 42,
	)

	report, err := svc.AnalyzeScenario(models.ScenarioRare)
	require.NoError(t, err)

	assert.InDelta(t, 1.0/3.0, report.MoranI, 1e-12)
	assert.InDelta(t, -0.25, report.MoranExpected, 1e-12)
	assert.InDelta(t, 0.5, report.GearyC, 1e-12)
	assert.Equal(t, 99, report.Permutations)
	assert.Equal(t, 2, report.Neighbors)
	require.Len(t, report.Locals, 5)
	assert.Equal(t, "TS-001", report.Locals[0].Code)
	for _, l := range report.Locals {
		assert.Greater(t, l.GiP, 0.0)
		assert.LessOrEqual(t, l.GiP, 1.0)
	}

	// The report is persisted for later retrieval
	stored, err := repository.NewReportRepository(db).GetByScenario(models.ScenarioRare)
	require.NoError(t, err)
	assert.InDelta(t, report.MoranI, stored.MoranI, 1e-12)
	require.Len(t, stored.Locals, 5)
	assert.Equal(t, report.Locals[0].GiP, stored.Locals[0].GiP)
}

func TestAnalyzeAllIsolatesScenarioFailures(t *testing.T) {
	db := testDB(t)
	seedLine(t, db) // risk values exist only for the rare scenario

	svc := NewClusterService(
		repository.NewSubstationRepository(db),
		repository.NewRiskFieldRepository(db),
		repository.NewReportRepository(db),
		2, 99, 42,
	)

	reports, failures, err := svc.AnalyzeAll()
	require.NoError(t, err)

	require.Contains(t, reports, models.ScenarioRare)
	assert.Len(t, failures, 2)
	for _, f := range failures {
		assert.Contains(t, f.Err, "no risk value")
	}
}

func TestAnalyzeScenarioMissingValue(t *testing.T) {
	db := testDB(t)
	seedLine(t, db)

	// One more substation without a risk value breaks the alignment
	seed(t, db, models.Substation{Code: "TS-009", X: 9, Y: 0, Condition: 2, AgeYears: 10, Material: 1})

	svc := NewClusterService(
		repository.NewSubstationRepository(db),
		repository.NewRiskFieldRepository(db),
		repository.NewReportRepository(db),
		2, 99, 42,
	)

	_, err := svc.AnalyzeScenario(models.ScenarioRare)
	assert.ErrorContains(t, err, "TS-009")
}
