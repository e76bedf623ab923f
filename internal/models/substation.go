package models

import "fmt"

// Substation represents one point-located distribution substation in the
// study area. Coordinates are projected planar (meters), so distances are
// plain Euclidean. Vulnerability and criticality are computed once and
// shared across all rainfall scenarios; only exposure and the fused risk
// vary per scenario, and those stay external.
type Substation struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"` // stable external identifier from the asset registry
	Name string `json:"name,omitempty" db:"name"`

	// Projected planar coordinates
	X float64 `json:"x" db:"x"`
	Y float64 `json:"y" db:"y"`

	// Asset attributes feeding the fuzzy vulnerability engine
	Condition float64 `json:"condition" db:"condition"` // ordinal rating, 1 (very good) .. 5 (very poor)
	AgeYears  float64 `json:"age_years" db:"age_years"`
	Material  float64 `json:"material" db:"material"` // encoded ordinal robustness class, 1 (robust) .. 3 (fragile)

	// Raw technical/utility criterion values by criterion name
	Criteria map[string]float64 `json:"criteria" db:"-"`

	// Derived scores, scenario-independent
	Vulnerability *float64 `json:"vulnerability,omitempty" db:"vulnerability"`
	Criticality   *float64 `json:"criticality,omitempty" db:"criticality"`
}

// Scenario identifies one of the rainfall scenarios the externally fused
// risk index is computed for
type Scenario string

const (
	ScenarioRare        Scenario = "rare"
	ScenarioExceptional Scenario = "exceptional"
	ScenarioExtreme     Scenario = "extreme"
)

// Scenarios lists all rainfall scenarios in a stable order
func Scenarios() []Scenario {
	return []Scenario{ScenarioRare, ScenarioExceptional, ScenarioExtreme}
}

// ParseScenario validates a scenario name
func ParseScenario(s string) (Scenario, error) {
	switch Scenario(s) {
	case ScenarioRare, ScenarioExceptional, ScenarioExtreme:
		return Scenario(s), nil
	}
	return "", fmt.Errorf("unknown scenario %q (want rare, exceptional or extreme)", s)
}

// RiskValue is one externally fused risk score for a substation under a
// scenario; it is the input field of the autocorrelation engine
type RiskValue struct {
	SubstationID int64    `json:"substation_id" db:"substation_id"`
	Code         string   `json:"code" db:"-"`
	Scenario     Scenario `json:"scenario" db:"scenario"`
	Value        float64  `json:"value" db:"value"`
}
