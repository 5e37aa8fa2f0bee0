// Package history is the append/read-only persistence layer for completed
// analyses. It backs /api/history and /api/dashboard; a storage failure
// degrades those features but never blocks an analysis.
package history

import (
	"context"
	"fmt"
	"time"

	"greenlens/internal/analysis"
	"greenlens/internal/tracking"
)

// MaxRecent bounds how many records Recent may return.
const MaxRecent = 25

// Record is one stored analysis outcome.
type Record struct {
	ID               int64                      `json:"id"`
	Kind             string                     `json:"kind"` // "snippet" or "project"
	Language         string                     `json:"language"`
	Summary          string                     `json:"summary"`
	AIModel          string                     `json:"ai_model,omitempty"`
	UsedFallback     bool                       `json:"used_fallback"`
	Before           analysis.ComplexityMetrics `json:"before_metrics"`
	After            analysis.ComplexityMetrics `json:"after_metrics"`
	CO2              analysis.CO2Report         `json:"co2"`
	SessionEmissions tracking.Emissions         `json:"session_emissions"`
	AlternativeCode  string                     `json:"alternative_code,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
}

// DayBucket is one day of dashboard timeseries data.
type DayBucket struct {
	Day            string  `json:"day"` // YYYY-MM-DD, UTC
	Analyses       int     `json:"analyses"`
	EnergySavedKWh float64 `json:"energy_saved_kwh"`
}

// Dashboard aggregates everything the dashboard view renders.
type Dashboard struct {
	TotalAnalyses       int         `json:"total_analyses"`
	FallbackCount       int         `json:"fallback_count"`
	TotalEnergySavedKWh float64     `json:"total_energy_saved_kwh"`
	TotalCO2SavedKg     float64     `json:"total_co2_saved_kg"`
	Timeseries          []DayBucket `json:"timeseries"`
	Report              string      `json:"narrative_report"`
}

// Store is the persistence contract. Writes are append-only; reads are
// most-recent-first.
type Store interface {
	Insert(ctx context.Context, rec Record) (int64, error)
	Recent(ctx context.Context, n int) ([]Record, error)
	Dashboard(ctx context.Context) (Dashboard, error)
	Close() error
}

// narrative renders the one-paragraph dashboard report.
func narrative(d Dashboard) string {
	if d.TotalAnalyses == 0 {
		return "No analyses recorded yet."
	}
	report := fmt.Sprintf("%d analyses recorded, projecting %.4f kWh (%.4f kg CO2) saved in total.",
		d.TotalAnalyses, d.TotalEnergySavedKWh, d.TotalCO2SavedKg)
	if d.FallbackCount > 0 {
		report += fmt.Sprintf(" %d used the local fallback optimizer.", d.FallbackCount)
	}
	return report
}

func clampRecent(n int) int {
	if n <= 0 || n > MaxRecent {
		return MaxRecent
	}
	return n
}
