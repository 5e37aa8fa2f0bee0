// Package tracking measures the energy and emissions attributable to running
// the analysis engine itself for one request. This is the measured
// counterpart to the heuristic projection: it brackets real work with a
// begin/end pair and converts elapsed time under an assumed process power
// envelope into kWh and kg CO2.
package tracking

import (
	"math"
	"time"
)

// Emissions is the measured result of one tracked session.
type Emissions struct {
	EnergyKWh float64 `json:"energy_kwh"`
	CO2Kg     float64 `json:"co2_kg"`
	DurationS float64 `json:"duration_s"`
}

// processPowerWatts is the assumed steady-state draw of the analysis
// process. A deliberate envelope, not a hardware reading.
const processPowerWatts = 15.0

// Session tracks one bracketed measurement. End must always run, including
// on error paths; callers defer it immediately after Begin.
type Session struct {
	start          time.Time
	emissionFactor float64
	done           bool
	result         Emissions
}

// Begin opens a measurement. emissionFactor converts kWh to kg CO2.
func Begin(emissionFactor float64) *Session {
	if emissionFactor <= 0 {
		emissionFactor = 0.475
	}
	return &Session{start: time.Now(), emissionFactor: emissionFactor}
}

// End closes the measurement and returns the session emissions. It is
// idempotent: repeated calls return the result captured by the first.
func (s *Session) End() Emissions {
	if s == nil {
		return Emissions{}
	}
	if s.done {
		return s.result
	}
	s.done = true

	elapsed := time.Since(s.start)
	if elapsed < 0 {
		elapsed = 0
	}
	energy := processPowerWatts * elapsed.Hours() / 1000
	s.result = Emissions{
		EnergyKWh: roundTo(energy, 6),
		CO2Kg:     roundTo(energy*s.emissionFactor, 6),
		DurationS: roundTo(elapsed.Seconds(), 3),
	}
	return s.result
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}
