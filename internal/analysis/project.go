package analysis

import (
	"sort"
	"strings"
)

// FileAnalysis is the per-file outcome inside a project scan. Error is set
// when the file was recognized but could not be scored, or when its language
// is unsupported; such files still count toward the project totals.
type FileAnalysis struct {
	Path       string            `json:"path"`
	Language   Language          `json:"language"`
	Metrics    ComplexityMetrics `json:"metrics"`
	References []Reference       `json:"references,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ProjectSummary aggregates a project scan. It is recomputed from the file
// results on every scan, never mutated incrementally.
type ProjectSummary struct {
	TotalFiles           int      `json:"total_files"`
	TotalLinesOfCode     int      `json:"total_lines_of_code"`
	TotalComplexity      float64  `json:"total_complexity"`
	Languages            []string `json:"languages"`
	InterconnectionCount int      `json:"interconnection_count"`
}

// ProjectAnalysis is the full multi-file result.
type ProjectAnalysis struct {
	Files            []FileAnalysis `json:"files"`
	Interconnections []Edge         `json:"interconnections"`
	Summary          ProjectSummary `json:"summary"`
	UnresolvedRefs   int            `json:"unresolved_reference_count"`
}

// AnalyzeProject scores and scans every unit sequentially. A failure in one
// file is recorded on that file and never aborts the rest of the scan.
func AnalyzeProject(units []SourceUnit) ProjectAnalysis {
	files := make([]FileAnalysis, 0, len(units))
	fileSet := make(map[string]Language, len(units))
	refsByFile := make(map[string][]Reference)
	langSet := make(map[Language]bool)

	for _, unit := range units {
		lang := unit.Language
		if lang == "" {
			lang = ClassifyFile(unit.Path, unit.Text)
		}
		fa := FileAnalysis{Path: unit.Path, Language: lang}

		if lang == LangUnknown {
			// Still counted: physical lines only, no structural metrics.
			fa.Metrics.LinesOfCode = countNonBlank(splitLines(unit.Text))
			fa.Error = "unsupported file type"
			files = append(files, fa)
			continue
		}

		metrics, err := Score(unit.Text, lang)
		if err != nil {
			fa.Error = err.Error()
			files = append(files, fa)
			continue
		}
		fa.Metrics = metrics
		fa.References = ExtractReferences(unit.Text, lang)

		fileSet[unit.Path] = lang
		if len(fa.References) > 0 {
			refsByFile[unit.Path] = fa.References
		}
		langSet[lang] = true
		files = append(files, fa)
	}

	edges, unresolved := BuildGraph(fileSet, refsByFile)

	summary := ProjectSummary{
		TotalFiles:           len(files),
		InterconnectionCount: len(edges),
		Languages:            make([]string, 0, len(langSet)),
	}
	for _, fa := range files {
		summary.TotalLinesOfCode += fa.Metrics.LinesOfCode
		summary.TotalComplexity += fa.Metrics.EstimatedComplexity
	}
	summary.TotalComplexity = round2(summary.TotalComplexity)
	for lang := range langSet {
		summary.Languages = append(summary.Languages, string(lang))
	}
	sort.Strings(summary.Languages)

	return ProjectAnalysis{
		Files:            files,
		Interconnections: edges,
		Summary:          summary,
		UnresolvedRefs:   unresolved,
	}
}

// TopFiles returns the n successfully-scored files with the highest
// estimated complexity, most complex first. Ties break by path for
// determinism.
func TopFiles(pa ProjectAnalysis, n int) []FileAnalysis {
	candidates := make([]FileAnalysis, 0, len(pa.Files))
	for _, fa := range pa.Files {
		if fa.Error == "" {
			candidates = append(candidates, fa)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Metrics.EstimatedComplexity != candidates[j].Metrics.EstimatedComplexity {
			return candidates[i].Metrics.EstimatedComplexity > candidates[j].Metrics.EstimatedComplexity
		}
		return candidates[i].Path < candidates[j].Path
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
