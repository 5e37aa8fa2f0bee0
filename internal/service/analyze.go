package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"greenlens/internal/analysis"
	"greenlens/internal/events"
	"greenlens/internal/history"
	"greenlens/internal/suggest"
	"greenlens/internal/tracking"
)

// Comparison pairs the before/after metrics with their field-wise delta.
type Comparison struct {
	Before analysis.ComplexityMetrics `json:"before"`
	After  analysis.ComplexityMetrics `json:"after"`
	Delta  analysis.MetricsDelta      `json:"delta"`
}

// AnalyzeResult is the full snippet-analysis response.
type AnalyzeResult struct {
	Analysis         Comparison         `json:"analysis"`
	CO2              analysis.CO2Report `json:"co2"`
	SessionEmissions tracking.Emissions `json:"session_emissions"`
	Suggestion       suggest.Suggestion `json:"suggestion"`
	AlternativeCode  string             `json:"alternative_code"`

	// trace records the lifecycle states in order; kept internal.
	trace []State
}

// AnalyzeSnippet runs the full single-snippet flow: score the input, obtain
// a suggestion (model or fallback), score the suggested code, compute the
// delta and the CO2 projection, and record the outcome. Persistence and the
// event feed are best effort; only invalid input fails the request.
func (s *Service) AnalyzeSnippet(ctx context.Context, code, language string) (AnalyzeResult, error) {
	var res AnalyzeResult
	res.step(StatePendingBefore)

	if strings.TrimSpace(code) == "" {
		return res, fmt.Errorf("%w: code must not be empty", ErrInvalidInput)
	}
	lang, err := analysis.ParseLanguage(language)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	session := tracking.Begin(s.emissionFactor)
	defer session.End()

	// A malformed snippet still flows through with zero metrics; the
	// fallback can always run on raw text.
	before, err := analysis.Score(code, lang)
	if err != nil {
		log.Printf("service: before scoring failed, continuing with zero metrics: %v", err)
	}
	res.step(StateBeforeScored)

	res.step(StateAwaitingSuggestion)
	sug := s.engine.Suggest(ctx, suggest.Request{Code: code, Language: lang, Before: before})
	if sug.UsedFallback {
		res.step(StateSuggestionFallback)
	} else {
		res.step(StateSuggestionReceived)
	}

	after, err := analysis.Score(sug.AlternativeCode, lang)
	if err != nil {
		// Unscorable suggestion: treat the rewrite as a no-op.
		log.Printf("service: after scoring failed, reusing before metrics: %v", err)
		after = before
	}
	res.step(StateAfterScored)

	res.Analysis = Comparison{
		Before: before,
		After:  after,
		Delta:  analysis.Delta(before, after),
	}
	res.step(StateDeltaComputed)

	res.CO2 = analysis.NewCO2Report(
		analysis.EstimateCO2(before, s.emissionFactor),
		analysis.EstimateCO2(after, s.emissionFactor),
	)
	res.Suggestion = sug
	res.AlternativeCode = sug.AlternativeCode
	res.SessionEmissions = session.End()

	s.record(ctx, history.Record{
		Kind:             "snippet",
		Language:         string(lang),
		Summary:          sug.Summary,
		AIModel:          sug.AIModelUsed,
		UsedFallback:     sug.UsedFallback,
		Before:           before,
		After:            after,
		CO2:              res.CO2,
		SessionEmissions: res.SessionEmissions,
		AlternativeCode:  sug.AlternativeCode,
	})
	s.hub.Publish(events.Event{
		Kind:           "snippet",
		Language:       string(lang),
		Summary:        sug.Summary,
		EnergySavedKWh: res.CO2.EnergySavedKWh,
		UsedFallback:   sug.UsedFallback,
	})

	res.step(StateDone)
	return res, nil
}

// record persists one outcome. A storage failure is logged and swallowed:
// history never blocks an analysis response.
func (s *Service) record(ctx context.Context, rec history.Record) {
	if _, err := s.store.Insert(ctx, rec); err != nil {
		log.Printf("service: history insert failed: %v", err)
	}
}

func (r *AnalyzeResult) step(st State) {
	r.trace = append(r.trace, st)
}
