// Package suggest produces optimization suggestions for analyzed code,
// either from a model backend or from a deterministic local fallback. The
// engine never fails: backend unavailability is itself a valid, tagged
// result.
package suggest

import "greenlens/internal/analysis"

// Insight is one concrete inefficiency the suggestion calls out.
type Insight struct {
	Issue  string `json:"issue"`
	Impact string `json:"impact"`
	Action string `json:"action"`
}

// Suggestion is the full suggestion object returned to callers. AIModelUsed
// is empty when the fallback produced the result.
type Suggestion struct {
	Summary          string    `json:"summary"`
	Confidence       string    `json:"confidence"`
	AnalysisInsights []Insight `json:"analysis_insights"`
	AlternativeCode  string    `json:"alternative_code"`
	AIModelUsed      string    `json:"ai_model_used,omitempty"`
	UsedFallback     bool      `json:"used_fallback"`
}

// Request is what the engine needs to produce one suggestion.
type Request struct {
	Code     string
	Language analysis.Language
	Before   analysis.ComplexityMetrics
}
