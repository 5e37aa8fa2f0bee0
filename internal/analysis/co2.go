package analysis

import (
	"math"
	"strings"
)

// CO2Estimate is the heuristic energy/emissions projection for one metrics
// snapshot.
type CO2Estimate struct {
	EnergyKWh float64 `json:"energy_kwh"`
	CO2Kg     float64 `json:"co2_kg"`
}

// CO2Report pairs the before/after estimates around an optimization.
// EnergySavedKWh is the raw before-after difference: a negative value means
// the suggested code is heuristically judged more expensive, and it is
// surfaced as-is rather than clamped.
type CO2Report struct {
	Before         CO2Estimate `json:"before"`
	After          CO2Estimate `json:"after"`
	EnergySavedKWh float64     `json:"energy_saved_kwh"`
}

// Heuristic model constants: a flat per-line energy rate scaled up by the
// complexity score.
const (
	baseRateKWhPerLine = 3e-6
	complexityScale    = 0.01
)

// DefaultEmissionFactor is the global average grid intensity in kg CO2 per
// kWh, used when no region is configured or the region is unrecognized.
const DefaultEmissionFactor = 0.475

// regionEmissionFactors maps lowercase region codes to kg CO2 per kWh.
var regionEmissionFactors = map[string]float64{
	"us": 0.38,
	"eu": 0.23,
	"de": 0.35,
	"fr": 0.06,
	"se": 0.04,
	"in": 0.71,
	"cn": 0.58,
	"au": 0.66,
}

// EmissionFactor resolves a region code to an emission factor, falling back
// to the global default for empty or unrecognized codes.
func EmissionFactor(region string) float64 {
	if f, ok := regionEmissionFactors[strings.ToLower(strings.TrimSpace(region))]; ok {
		return f
	}
	return DefaultEmissionFactor
}

// EstimateCO2 converts metrics into an energy/emissions projection. Both
// outputs are non-negative for non-negative inputs.
func EstimateCO2(m ComplexityMetrics, emissionFactor float64) CO2Estimate {
	loc := float64(m.LinesOfCode)
	if loc < 0 {
		loc = 0
	}
	complexity := m.EstimatedComplexity
	if complexity < 0 {
		complexity = 0
	}
	energy := baseRateKWhPerLine * loc * (1 + complexityScale*complexity)
	return CO2Estimate{
		EnergyKWh: round6(energy),
		CO2Kg:     round6(energy * emissionFactor),
	}
}

// NewCO2Report builds the before/after report with the raw saved-energy
// difference.
func NewCO2Report(before, after CO2Estimate) CO2Report {
	return CO2Report{
		Before:         before,
		After:          after,
		EnergySavedKWh: round6(before.EnergyKWh - after.EnergyKWh),
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
