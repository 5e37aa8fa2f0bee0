package analysis

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// ComplexityMetrics is the structural report for one file. All counts are
// derived from line-oriented pattern matching; Score is a pure function of
// (text, language).
type ComplexityMetrics struct {
	LinesOfCode         int     `json:"lines_of_code"`
	LoopCount           int     `json:"loop_count"`
	ConditionalCount    int     `json:"conditional_count"`
	FunctionCount       int     `json:"function_count"`
	DuplicateBlockCount int     `json:"duplicate_block_count"`
	MaxNestingDepth     int     `json:"max_nesting_depth"`
	EstimatedComplexity float64 `json:"estimated_complexity"`
}

// ErrMalformedInput flags content the scorer refuses to interpret as source
// text. The returned metrics are all zeros; multi-file scans record the error
// and continue.
var ErrMalformedInput = errors.New("analysis: malformed or binary content")

// Complexity score weights. Each term is monotone non-decreasing in its
// input, so the total is as well.
const (
	weightLoop        = 1.8
	weightConditional = 1.2
	weightDuplicate   = 0.7
	weightNesting     = 0.9
	weightSize        = 0.5
)

// dupWindow is the duplicate-detection window size in lines. Tunable, not a
// contract: short boilerplate can over-count and reordered duplicates can
// slip through.
const dupWindow = 3

// indentUnit is the column width treated as one nesting level in
// indentation-based languages. Tabs count as a full unit.
const indentUnit = 4

// Score computes structural metrics for one file's text. It never touches
// the file system or network and never panics on odd input; binary or
// non-UTF-8 content yields zero metrics and ErrMalformedInput.
func Score(text string, lang Language) (ComplexityMetrics, error) {
	spec := specFor(lang)
	if spec == nil {
		return ComplexityMetrics{}, ErrMalformedInput
	}
	if strings.ContainsRune(text, 0) || !utf8.ValidString(text) {
		return ComplexityMetrics{}, ErrMalformedInput
	}

	lines := strings.Split(text, "\n")
	m := ComplexityMetrics{
		LinesOfCode:         countNonBlank(lines),
		LoopCount:           countMatches(text, spec.loopPatterns),
		ConditionalCount:    countMatches(text, spec.conditionalPatterns),
		FunctionCount:       countMatches(text, spec.functionPatterns),
		DuplicateBlockCount: countDuplicateWindows(lines),
	}
	if spec.indentNesting {
		m.MaxNestingDepth = maxIndentDepth(lines)
	} else {
		m.MaxNestingDepth = maxBraceDepth(text)
	}
	m.EstimatedComplexity = round2(
		weightLoop*float64(m.LoopCount) +
			weightConditional*float64(m.ConditionalCount) +
			weightDuplicate*float64(m.DuplicateBlockCount) +
			weightNesting*float64(m.MaxNestingDepth) +
			weightSize*math.Log(1+float64(m.LinesOfCode)))
	return m, nil
}

func countNonBlank(lines []string) int {
	n := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

// countDuplicateWindows hashes fixed-size windows of whitespace-normalized
// lines and counts repeats: a window seen k times contributes k-1. Windows
// containing blank lines are skipped.
func countDuplicateWindows(lines []string) int {
	if len(lines) < dupWindow {
		return 0
	}
	normalized := make([]string, len(lines))
	for i, line := range lines {
		normalized[i] = strings.Join(strings.Fields(line), " ")
	}
	seen := make(map[uint64]int)
	dups := 0
	for i := 0; i+dupWindow <= len(normalized); i++ {
		window := normalized[i : i+dupWindow]
		if hasBlank(window) {
			continue
		}
		h := xxhash.Sum64String(strings.Join(window, "\n"))
		if seen[h] > 0 {
			dups++
		}
		seen[h]++
	}
	return dups
}

func hasBlank(window []string) bool {
	for _, line := range window {
		if line == "" {
			return true
		}
	}
	return false
}

func maxIndentDepth(lines []string) int {
	max := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := 0
		for _, r := range line {
			if r == ' ' {
				cols++
			} else if r == '\t' {
				cols += indentUnit
			} else {
				break
			}
		}
		if depth := cols / indentUnit; depth > max {
			max = depth
		}
	}
	return max
}

func maxBraceDepth(text string) int {
	depth, max := 0, 0
	for _, r := range text {
		switch r {
		case '{':
			depth++
			if depth > max {
				max = depth
			}
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return max
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
