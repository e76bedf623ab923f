package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/floodgrid/substation-risk-go/internal/models"
)

// WriteScores exports the per-substation vulnerability and criticality
// scores as CSV for the external GIS fusion tool. Substations without a
// computed score export an empty cell rather than a fabricated value.
func WriteScores(w io.Writer, substations []models.Substation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"code", "vulnerability", "criticality"}); err != nil {
		return fmt.Errorf("failed to write scores header: %w", err)
	}

	for _, s := range substations {
		record := []string{s.Code, formatScore(s.Vulnerability), formatScore(s.Criticality)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write scores for substation %s: %w", s.Code, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteClusterReport exports one scenario's autocorrelation report as CSV:
// a header comment row carries the global statistics, followed by the
// per-substation local statistics
func WriteClusterReport(w io.Writer, report *models.ClusterReport) error {
	writer := csv.NewWriter(w)

	global := []string{
		"scenario", string(report.Scenario),
		"moran_i", formatFloat(report.MoranI),
		"moran_expected", formatFloat(report.MoranExpected),
		"moran_pseudo_p", formatFloat(report.MoranP),
		"geary_c", formatFloat(report.GearyC),
		"geary_pseudo_p", formatFloat(report.GearyP),
		"permutations", strconv.Itoa(report.Permutations),
		"seed", strconv.FormatInt(report.Seed, 10),
		"neighbors", strconv.Itoa(report.Neighbors),
	}
	if err := writer.Write(global); err != nil {
		return fmt.Errorf("failed to write global statistics: %w", err)
	}

	if err := writer.Write([]string{"code", "local_i", "local_i_pseudo_p", "quadrant", "gi_z", "gi_pseudo_p", "gi_category"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, l := range report.Locals {
		record := []string{
			l.Code,
			formatFloat(l.LocalI),
			formatFloat(l.LocalIP),
			l.Quadrant,
			formatFloat(l.GiZ),
			formatFloat(l.GiP),
			l.GiCategory,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write local statistics for substation %s: %w", l.Code, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
