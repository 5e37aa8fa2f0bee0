package suggest

import (
	"encoding/json"
	"errors"
	"strings"
)

var errUnparsable = errors.New("suggest: response is not a suggestion document")

type wireSuggestion struct {
	Summary         string `json:"summary"`
	Confidence      string `json:"confidence"`
	Analysis        []struct {
		Issue  string `json:"issue"`
		Impact string `json:"impact"`
		Action string `json:"action"`
	} `json:"analysis"`
	AlternativeCode string `json:"alternative_code"`
}

// parseSuggestion decodes a model response. Extraneous text around the JSON
// object is tolerated: the outermost brace pair is salvaged before decoding.
// sourceCode backfills an empty alternative_code so callers always get
// something scoreable.
func parseSuggestion(raw json.RawMessage, sourceCode string) (Suggestion, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Suggestion{}, errUnparsable
	}
	if !strings.HasPrefix(trimmed, "{") {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start == -1 || end == -1 || end <= start {
			return Suggestion{}, errUnparsable
		}
		trimmed = trimmed[start : end+1]
	}

	var wire wireSuggestion
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return Suggestion{}, errUnparsable
	}

	alt := strings.TrimSpace(strings.ReplaceAll(wire.AlternativeCode, `\n`, "\n"))
	if alt == "" {
		alt = sourceCode
	}
	out := Suggestion{
		Summary:         firstNonEmpty(strings.TrimSpace(wire.Summary), "Model suggestion"),
		Confidence:      firstNonEmpty(strings.TrimSpace(wire.Confidence), "medium"),
		AlternativeCode: alt,
	}
	for _, item := range wire.Analysis {
		out.AnalysisInsights = append(out.AnalysisInsights, Insight{
			Issue:  firstNonEmpty(strings.TrimSpace(item.Issue), "Optimization"),
			Impact: firstNonEmpty(strings.TrimSpace(item.Impact), "Impact not provided."),
			Action: firstNonEmpty(strings.TrimSpace(item.Action), "Action not provided."),
		})
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
