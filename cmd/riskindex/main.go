package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/geo/r2"

	"github.com/floodgrid/substation-risk-go/internal/ahp"
	"github.com/floodgrid/substation-risk-go/internal/fuzzy"
	"github.com/floodgrid/substation-risk-go/internal/ingest"
	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/normalize"
	"github.com/floodgrid/substation-risk-go/internal/service"
	"github.com/floodgrid/substation-risk-go/internal/spatial"
)

// riskindex is the file-based batch mode: it reads the asset registry and
// optional per-scenario risk fields from CSV, runs the scoring and
// clustering engines, and writes the results back as CSV without touching
// a database.
func main() {
	var (
		registryPath    = flag.String("registry", "", "asset registry CSV (required)")
		matrixPath      = flag.String("matrix", "", "expert comparison matrix CSV (default: shipped matrix)")
		calibrationPath = flag.String("calibration", "", "fuzzy calibration JSON (default: shipped calibration)")
		rarePath        = flag.String("rare", "", "fused risk field CSV for the rare scenario")
		exceptionalPath = flag.String("exceptional", "", "fused risk field CSV for the exceptional scenario")
		extremePath     = flag.String("extreme", "", "fused risk field CSV for the extreme scenario")
		outDir          = flag.String("out", ".", "output directory")
		neighbors       = flag.Int("k", 5, "neighbors of the spatial weight graph")
		permutations    = flag.Int("permutations", 999, "permutation trials for pseudo-significance")
		seed            = flag.Int64("seed", 20260112, "base seed for permutation tests")
	)
	flag.Parse()

	if *registryPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	fuzzyEngine, err := service.BuildFuzzyEngine(*calibrationPath)
	if err != nil {
		log.Fatal(err)
	}
	criteria := ahp.DefaultCriteria()
	ahpEngine, err := service.BuildAHPEngine(*matrixPath, criteria)
	if err != nil {
		log.Fatal(err)
	}

	report := ahpEngine.Report()
	log.Printf("Derived weights (lambda_max=%.4f, CI=%.4f, CR=%.4f):", report.LambdaMax, report.CI, report.CR)
	for i, name := range report.Criteria {
		log.Printf("  %-24s %.4f", name, report.Weights[i])
	}

	substations, err := loadRegistry(*registryPath, criteria)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Loaded %d substations from %s", len(substations), *registryPath)

	scoreAll(substations, fuzzyEngine, ahpEngine, criteria)

	scoresPath := filepath.Join(*outDir, "scores.csv")
	if err := writeScores(scoresPath, substations); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s", scoresPath)

	fieldPaths := map[models.Scenario]string{
		models.ScenarioRare:        *rarePath,
		models.ScenarioExceptional: *exceptionalPath,
		models.ScenarioExtreme:     *extremePath,
	}

	var graph *spatial.WeightMatrix
	for i, scenario := range models.Scenarios() {
		path := fieldPaths[scenario]
		if path == "" {
			continue
		}

		if graph == nil {
			points := make([]r2.Point, len(substations))
			for j, s := range substations {
				points[j] = r2.Point{X: s.X, Y: s.Y}
			}
			graph, err = spatial.BuildKNN(points, *neighbors, spatial.RowStandardized)
			if err != nil {
				log.Fatal(err)
			}
		}

		field, err := loadRiskField(path, scenario, substations)
		if err != nil {
			log.Fatal(err)
		}

		cfg := spatial.DefaultSignificance(*seed + int64(i)*1_000_000)
		cfg.Trials = *permutations

		result, err := spatial.Analyze(graph, field, cfg)
		if err != nil {
			log.Fatalf("scenario %s: %v", scenario, err)
		}

		reportPath := filepath.Join(*outDir, fmt.Sprintf("clusters_%s.csv", scenario))
		if err := writeReport(reportPath, scenario, result, substations, cfg, *neighbors); err != nil {
			log.Fatal(err)
		}
		log.Printf("Scenario %-12s Moran I=%.4f (p=%.4f)  Geary C=%.4f (p=%.4f)  -> %s",
			scenario, result.MoranI, result.MoranP, result.GearyC, result.GearyP, reportPath)
	}
}

func loadRegistry(path string, criteria []models.Criterion) ([]models.Substation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.LoadRegistry(f, criteria)
}

// scoreAll scores every substation, logging and skipping failures
func scoreAll(substations []models.Substation, fuzzyEngine *fuzzy.Engine, ahpEngine *ahp.Engine, criteria []models.Criterion) {
	ranges := make(map[string]normalize.Range)
	banded := true
	for _, c := range criteria {
		if !c.HasBands() {
			banded = false
		}
		values := make([]float64, 0, len(substations))
		for _, s := range substations {
			if v, ok := s.Criteria[c.Name]; ok && !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			ranges[c.Name] = normalize.RangeOf(values)
		}
	}

	failed := 0
	for i := range substations {
		s := &substations[i]

		v, err := fuzzyEngine.Score(map[string]float64{
			fuzzy.VarCondition: s.Condition,
			fuzzy.VarAge:       s.AgeYears,
			fuzzy.VarMaterial:  s.Material,
		})
		if err != nil {
			log.Printf("substation %s: vulnerability: %v", s.Code, err)
			failed++
			continue
		}
		s.Vulnerability = &v

		var c float64
		if banded {
			c, err = ahpEngine.ScoreBands(s.Criteria)
		} else {
			c, err = ahpEngine.ScoreMinMax(s.Criteria, ranges)
		}
		if err != nil {
			log.Printf("substation %s: criticality: %v", s.Code, err)
			failed++
			continue
		}
		s.Criticality = &c
	}
	log.Printf("Scored %d substations (%d failed)", len(substations)-failed, failed)
}

// loadRiskField reads and aligns one scenario's risk field to the registry order
func loadRiskField(path string, scenario models.Scenario, substations []models.Substation) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values, err := ingest.LoadRiskField(f, scenario)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]float64, len(values))
	for _, v := range values {
		byCode[v.Code] = v.Value
	}

	field := make([]float64, len(substations))
	for i, s := range substations {
		v, ok := byCode[s.Code]
		if !ok {
			return nil, fmt.Errorf("scenario %s has no risk value for substation %s", scenario, s.Code)
		}
		field[i] = v
	}
	return field, nil
}

func writeScores(path string, substations []models.Substation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ingest.WriteScores(f, substations)
}

func writeReport(path string, scenario models.Scenario, result *spatial.Result,
	substations []models.Substation, cfg spatial.SignificanceConfig, neighbors int) error {

	report := &models.ClusterReport{
		Scenario:      scenario,
		MoranI:        result.MoranI,
		MoranExpected: result.MoranExpected,
		MoranP:        result.MoranP,
		GearyC:        result.GearyC,
		GearyP:        result.GearyP,
		Permutations:  cfg.Trials,
		Seed:          cfg.Seed,
		Neighbors:     neighbors,
		Locals:        make([]models.LocalCluster, len(result.Locals)),
	}
	for i, l := range result.Locals {
		report.Locals[i] = models.LocalCluster{
			Code:       substations[i].Code,
			LocalI:     l.I,
			LocalIP:    l.P,
			Quadrant:   l.Quadrant,
			GiZ:        l.GiZ,
			GiP:        l.GiP,
			GiCategory: l.GiCategory,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ingest.WriteClusterReport(f, report)
}
