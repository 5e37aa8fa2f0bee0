package suggest

import "strings"

// Fallback is the deterministic local transform used when no model backend
// is available or it fails: every repeated non-blank line (after trimming)
// is dropped beyond its first occurrence. Always returns a non-empty
// alternative and is tagged low-confidence.
func Fallback(code string) Suggestion {
	seen := make(map[string]bool)
	var kept []string
	for _, line := range strings.Split(code, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped != "" && seen[stripped] {
			continue
		}
		kept = append(kept, line)
		if stripped != "" {
			seen[stripped] = true
		}
	}
	alt := strings.Join(kept, "\n")
	if strings.TrimSpace(alt) == "" {
		alt = code
	}
	return Suggestion{
		Summary:    "Removed duplicate lines and recommended extracting repeated logic into helper functions.",
		Confidence: "low",
		AnalysisInsights: []Insight{{
			Issue:  "Duplicate lines",
			Impact: "Redundant operations waste CPU cycles and energy.",
			Action: "Keep one copy per repeated block or extract helpers.",
		}},
		AlternativeCode: alt,
		UsedFallback:    true,
	}
}
