package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/floodgrid/substation-risk-go/internal/models"
)

// LoadRiskField reads one scenario's externally fused risk scores from a
// CSV source with columns code,value. Every substation named must exist;
// resolution against the registry happens in the service layer.
func LoadRiskField(r io.Reader, scenario models.Scenario) ([]models.RiskValue, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read risk field header: %w", err)
	}

	codeIdx, valueIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.ToLower(h)) {
		case "code":
			codeIdx = i
		case "value":
			valueIdx = i
		}
	}
	if codeIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("risk field needs code and value columns")
	}

	var result []models.RiskValue
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read risk field line %d: %w", line, err)
		}

		code := strings.TrimSpace(record[codeIdx])
		if code == "" {
			return nil, fmt.Errorf("risk field line %d has an empty substation code", line)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("substation %s has invalid risk value %q", code, record[valueIdx])
		}

		result = append(result, models.RiskValue{Code: code, Scenario: scenario, Value: v})
	}

	return result, nil
}
