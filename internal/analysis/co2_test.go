package analysis

import (
	"math"
	"testing"
)

func TestEstimateCO2NonNegative(t *testing.T) {
	cases := []ComplexityMetrics{
		{},
		{LinesOfCode: 100, EstimatedComplexity: 12.5},
		{LinesOfCode: -5, EstimatedComplexity: -1},
	}
	for _, m := range cases {
		est := EstimateCO2(m, DefaultEmissionFactor)
		if est.EnergyKWh < 0 || est.CO2Kg < 0 {
			t.Fatalf("negative estimate for %+v: %+v", m, est)
		}
	}
}

func TestEstimateCO2ScalesWithComplexity(t *testing.T) {
	simple := EstimateCO2(ComplexityMetrics{LinesOfCode: 1000, EstimatedComplexity: 1}, DefaultEmissionFactor)
	complexer := EstimateCO2(ComplexityMetrics{LinesOfCode: 1000, EstimatedComplexity: 50}, DefaultEmissionFactor)
	if complexer.EnergyKWh <= simple.EnergyKWh {
		t.Fatalf("higher complexity must cost more energy: %v vs %v", simple.EnergyKWh, complexer.EnergyKWh)
	}
}

func TestEstimateCO2KnownValue(t *testing.T) {
	est := EstimateCO2(ComplexityMetrics{LinesOfCode: 1000, EstimatedComplexity: 100}, 0.5)
	wantEnergy := 3e-6 * 1000 * 2 // 0.006
	if math.Abs(est.EnergyKWh-wantEnergy) > 1e-9 {
		t.Fatalf("energy = %v, want %v", est.EnergyKWh, wantEnergy)
	}
	if math.Abs(est.CO2Kg-wantEnergy*0.5) > 1e-9 {
		t.Fatalf("co2 = %v, want %v", est.CO2Kg, wantEnergy*0.5)
	}
}

func TestEmissionFactorLookup(t *testing.T) {
	if EmissionFactor("fr") >= EmissionFactor("in") {
		t.Fatalf("expected fr grid cleaner than in")
	}
	if EmissionFactor(" SE ") != EmissionFactor("se") {
		t.Fatalf("region lookup must trim and lowercase")
	}
	if EmissionFactor("atlantis") != DefaultEmissionFactor {
		t.Fatalf("unknown region must use the default factor")
	}
	if EmissionFactor("") != DefaultEmissionFactor {
		t.Fatalf("empty region must use the default factor")
	}
}

func TestCO2ReportKeepsRawSavings(t *testing.T) {
	before := CO2Estimate{EnergyKWh: 0.002, CO2Kg: 0.001}
	after := CO2Estimate{EnergyKWh: 0.005, CO2Kg: 0.0025}
	rep := NewCO2Report(before, after)
	if rep.EnergySavedKWh >= 0 {
		t.Fatalf("a costlier rewrite must report negative savings, got %v", rep.EnergySavedKWh)
	}
	if math.Abs(rep.EnergySavedKWh-(-0.003)) > 1e-9 {
		t.Fatalf("energy_saved_kwh = %v, want -0.003", rep.EnergySavedKWh)
	}
}
