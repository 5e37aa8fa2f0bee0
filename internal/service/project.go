package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"greenlens/internal/analysis"
	"greenlens/internal/archive"
	"greenlens/internal/events"
	"greenlens/internal/history"
	"greenlens/internal/suggest"
	"greenlens/internal/tracking"
)

// ErrArchiveTooLarge and ErrBadArchive classify project-upload failures for
// the HTTP layer.
var (
	ErrArchiveTooLarge = errors.New("archive too large")
	ErrBadArchive      = errors.New("unreadable archive")
)

// topFileSuggestions is how many of the most complex files get a per-file
// suggestion on project uploads.
const topFileSuggestions = 3

// suggestionWorkers bounds concurrent model calls during a project scan.
const suggestionWorkers = 2

// FileSuggestion is one per-file suggestion inside a project result.
type FileSuggestion struct {
	Path       string                     `json:"path"`
	Suggestion suggest.Suggestion         `json:"suggestion"`
	After      analysis.ComplexityMetrics `json:"after_metrics"`
	Delta      analysis.MetricsDelta      `json:"delta"`
}

// ProjectResult is the full project-analysis response.
type ProjectResult struct {
	Project          analysis.ProjectAnalysis `json:"project_analysis"`
	CO2              analysis.CO2Estimate     `json:"co2"`
	SessionEmissions tracking.Emissions       `json:"session_emissions"`
	Suggestions      []FileSuggestion         `json:"suggestions"`
	Skipped          []string                 `json:"skipped,omitempty"`
	AnalysisID       string                   `json:"analysis_id"`
}

// AnalyzeProject scans an uploaded ZIP: per-file complexity, the
// interconnection graph, a project-level CO2 projection, and suggestions for
// the most complex files. The raw archive is archived to object storage when
// a store is configured.
func (s *Service) AnalyzeProject(ctx context.Context, data []byte) (ProjectResult, error) {
	var res ProjectResult
	res.AnalysisID = newAnalysisID()

	session := tracking.Begin(s.emissionFactor)
	defer session.End()

	units, skipped, err := archive.Extract(data)
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrTooLarge):
			return res, fmt.Errorf("%w: %v", ErrArchiveTooLarge, err)
		default:
			return res, fmt.Errorf("%w: %v", ErrBadArchive, err)
		}
	}
	if len(units) == 0 {
		return res, fmt.Errorf("%w: no analyzable files", ErrBadArchive)
	}
	res.Skipped = skipped

	res.Project = analysis.AnalyzeProject(units)
	res.CO2 = analysis.EstimateCO2(analysis.ComplexityMetrics{
		LinesOfCode:         res.Project.Summary.TotalLinesOfCode,
		EstimatedComplexity: res.Project.Summary.TotalComplexity,
	}, s.emissionFactor)

	res.Suggestions = s.suggestTopFiles(ctx, res.Project, units)

	if s.artifacts != nil {
		if err := s.artifacts.Put(ctx, res.AnalysisID, "upload.zip", data); err != nil {
			log.Printf("service: archive upload failed: %v", err)
		}
	}

	res.SessionEmissions = session.End()

	summary := fmt.Sprintf("%d files, %d lines across %d languages",
		res.Project.Summary.TotalFiles,
		res.Project.Summary.TotalLinesOfCode,
		len(res.Project.Summary.Languages))
	s.record(ctx, history.Record{
		Kind:             "project",
		Language:         "mixed",
		Summary:          summary,
		UsedFallback:     projectUsedFallback(res.Suggestions),
		CO2:              analysis.CO2Report{Before: res.CO2, After: res.CO2},
		SessionEmissions: res.SessionEmissions,
	})
	s.hub.Publish(events.Event{
		Kind:         "project",
		Language:     "mixed",
		Summary:      summary,
		UsedFallback: projectUsedFallback(res.Suggestions),
	})

	return res, nil
}

// suggestTopFiles requests suggestions for the most complex files, a bounded
// number at a time. Failures degrade to the fallback inside the engine, so
// the group never carries an error; it only bounds concurrency.
func (s *Service) suggestTopFiles(ctx context.Context, pa analysis.ProjectAnalysis, units []analysis.SourceUnit) []FileSuggestion {
	top := analysis.TopFiles(pa, topFileSuggestions)
	if len(top) == 0 {
		return nil
	}
	textByPath := make(map[string]string, len(units))
	for _, unit := range units {
		textByPath[unit.Path] = unit.Text
	}

	out := make([]FileSuggestion, len(top))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(suggestionWorkers)
	for i, fa := range top {
		g.Go(func() error {
			sug := s.engine.Suggest(ctx, suggest.Request{
				Code:     textByPath[fa.Path],
				Language: fa.Language,
				Before:   fa.Metrics,
			})
			after, err := analysis.Score(sug.AlternativeCode, fa.Language)
			if err != nil {
				after = fa.Metrics
			}
			mu.Lock()
			out[i] = FileSuggestion{
				Path:       fa.Path,
				Suggestion: sug,
				After:      after,
				Delta:      analysis.Delta(fa.Metrics, after),
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func projectUsedFallback(suggestions []FileSuggestion) bool {
	for _, fs := range suggestions {
		if fs.Suggestion.UsedFallback {
			return true
		}
	}
	return false
}
