package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/floodgrid/substation-risk-go/internal/models"
)

// Core asset registry columns; additional columns are matched against the
// configured criterion names
const (
	colCode      = "code"
	colName      = "name"
	colX         = "x"
	colY         = "y"
	colCondition = "condition"
	colAge       = "age_years"
	colMaterial  = "material"
)

// LoadRegistry reads the asset registry from a CSV source with named
// columns: one record per substation with identifier, projected planar
// coordinates, condition, age, material and the raw criterion values.
// Attribute errors are reported with the substation identifier; core
// attributes are never defaulted. A blank criterion cell is omitted from
// the criteria map and resolved by the scoring path (band rating treats it
// as the lowest band, min-max rejects it as a data-quality error).
func LoadRegistry(r io.Reader, criteria []models.Criterion) ([]models.Substation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, required := range []string{colCode, colX, colY, colCondition, colAge, colMaterial} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("registry is missing required column %q", required)
		}
	}
	for _, c := range criteria {
		if _, ok := cols[c.Name]; !ok {
			return nil, fmt.Errorf("registry is missing criterion column %q", c.Name)
		}
	}

	var result []models.Substation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read registry line %d: %w", line, err)
		}

		code := strings.TrimSpace(record[cols[colCode]])
		if code == "" {
			return nil, fmt.Errorf("registry line %d has an empty substation code", line)
		}

		s := models.Substation{Code: code, Criteria: make(map[string]float64, len(criteria))}
		if idx, ok := cols[colName]; ok {
			s.Name = strings.TrimSpace(record[idx])
		}

		if s.X, err = parseField(record, cols[colX], code, colX); err != nil {
			return nil, err
		}
		if s.Y, err = parseField(record, cols[colY], code, colY); err != nil {
			return nil, err
		}
		if s.Condition, err = parseField(record, cols[colCondition], code, colCondition); err != nil {
			return nil, err
		}
		if s.AgeYears, err = parseField(record, cols[colAge], code, colAge); err != nil {
			return nil, err
		}
		if s.Material, err = parseField(record, cols[colMaterial], code, colMaterial); err != nil {
			return nil, err
		}

		for _, c := range criteria {
			cell := strings.TrimSpace(record[cols[c.Name]])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("substation %s has invalid value %q for criterion %s", code, cell, c.Name)
			}
			s.Criteria[c.Name] = v
		}

		result = append(result, s)
	}

	return result, nil
}

func parseField(record []string, idx int, code, column string) (float64, error) {
	cell := strings.TrimSpace(record[idx])
	if cell == "" {
		return 0, fmt.Errorf("substation %s is missing attribute %s", code, column)
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("substation %s has invalid value %q for attribute %s", code, cell, column)
	}
	return v, nil
}
