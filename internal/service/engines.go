package service

import (
	"fmt"
	"os"

	"github.com/floodgrid/substation-risk-go/internal/ahp"
	"github.com/floodgrid/substation-risk-go/internal/config"
	"github.com/floodgrid/substation-risk-go/internal/fuzzy"
	"github.com/floodgrid/substation-risk-go/internal/ingest"
	"github.com/floodgrid/substation-risk-go/internal/models"
)

// BuildFuzzyEngine compiles the vulnerability inference engine from the
// configured calibration file, or the shipped calibration when none is set
func BuildFuzzyEngine(calibrationPath string) (*fuzzy.Engine, error) {
	cal := fuzzy.DefaultCalibration()
	if calibrationPath != "" {
		loaded, err := fuzzy.LoadCalibration(calibrationPath)
		if err != nil {
			return nil, err
		}
		cal = loaded
	}
	return cal.Build()
}

// BuildAHPEngine derives the criticality weight vector from the configured
// comparison matrix CSV, or the shipped expert matrix when none is set.
// An inconsistent matrix (CR >= 0.10) fails here, before any scoring runs.
func BuildAHPEngine(matrixPath string, criteria []models.Criterion) (*ahp.Engine, error) {
	if matrixPath != "" {
		f, err := os.Open(matrixPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open comparison matrix: %w", err)
		}
		defer f.Close()

		m, err := ingest.LoadPairwiseMatrix(f)
		if err != nil {
			return nil, err
		}
		return ahp.NewEngine(criteria, m)
	}

	m, err := ahp.DefaultMatrix()
	if err != nil {
		return nil, err
	}
	return ahp.NewEngine(criteria, m)
}

// BuildEngines constructs both scoring engines from the configuration
func BuildEngines(cfg *config.Config) (*fuzzy.Engine, *ahp.Engine, []models.Criterion, error) {
	fuzzyEngine, err := BuildFuzzyEngine(cfg.FuzzyCalibration)
	if err != nil {
		return nil, nil, nil, err
	}

	criteria := ahp.DefaultCriteria()
	ahpEngine, err := BuildAHPEngine(cfg.AHPMatrix, criteria)
	if err != nil {
		return nil, nil, nil, err
	}

	return fuzzyEngine, ahpEngine, criteria, nil
}
