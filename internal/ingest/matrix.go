package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/floodgrid/substation-risk-go/internal/ahp"
)

// LoadPairwiseMatrix reads an expert comparison matrix from CSV. The first
// row is a header of criterion names (with a leading label cell), each
// following row starts with its criterion name. Entries accept fractions
// of the Saaty scale like "1/3".
func LoadPairwiseMatrix(r io.Reader) (*ahp.PairwiseMatrix, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read comparison matrix: %w", err)
	}
	if len(records) < 3 {
		return nil, fmt.Errorf("comparison matrix needs at least 2 criteria, got %d rows", len(records)-1)
	}

	header := records[0]
	criteria := make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		name := strings.TrimSpace(strings.ToLower(h))
		if name == "" {
			return nil, fmt.Errorf("comparison matrix header has an empty criterion name")
		}
		criteria = append(criteria, name)
	}

	n := len(criteria)
	if len(records)-1 != n {
		return nil, fmt.Errorf("comparison matrix has %d rows for %d criteria", len(records)-1, n)
	}

	entries := make([][]float64, n)
	for i, record := range records[1:] {
		if len(record) != n+1 {
			return nil, fmt.Errorf("comparison matrix row %q has %d entries, want %d", record[0], len(record)-1, n)
		}
		rowName := strings.TrimSpace(strings.ToLower(record[0]))
		if rowName != criteria[i] {
			return nil, fmt.Errorf("comparison matrix row %d is %q but column %d is %q", i, rowName, i, criteria[i])
		}

		entries[i] = make([]float64, n)
		for j, cell := range record[1:] {
			v, err := parseJudgment(cell)
			if err != nil {
				return nil, fmt.Errorf("comparison matrix entry (%s,%s): %w", criteria[i], criteria[j], err)
			}
			entries[i][j] = v
		}
	}

	return ahp.NewPairwiseMatrix(criteria, entries)
}

// parseJudgment parses a Saaty-scale entry, accepting "a/b" fractions
func parseJudgment(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if num, den, ok := strings.Cut(cell, "/"); ok {
		a, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid fraction %q", cell)
		}
		b, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || b == 0 {
			return 0, fmt.Errorf("invalid fraction %q", cell)
		}
		return a / b, nil
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid judgment %q", cell)
	}
	return v, nil
}
