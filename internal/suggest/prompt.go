package suggest

import "greenlens/internal/analysis"

const promptSchema = `{
  "summary": "<=200 characters explaining the optimization",
  "confidence": "high|medium|low",
  "analysis": [
    {
      "issue": "short title of an inefficiency",
      "impact": "one sentence describing why it matters",
      "action": "specific fix you applied"
    }
  ],
  "alternative_code": "the improved code, no markdown fences"
}`

// buildPrompt produces the system prompt. The code, language, and metrics
// travel separately as the input payload.
func buildPrompt(lang analysis.Language) string {
	return "You are a senior " + string(lang) + " engineer. Review the code in the input " +
		"payload and output ONLY strict JSON matching this schema. No markdown, no prose " +
		"outside the JSON.\n\nSchema:\n" + promptSchema
}

type promptInput struct {
	Code     string                     `json:"code"`
	Language analysis.Language          `json:"language"`
	Metrics  analysis.ComplexityMetrics `json:"metrics"`
}
