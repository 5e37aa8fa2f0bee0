package analysis

// MetricsDelta is the field-by-field difference between two metrics
// snapshots: always after minus before. Negative values mean the after code
// improved on that dimension.
type MetricsDelta struct {
	LinesOfCode         int     `json:"lines_of_code"`
	LoopCount           int     `json:"loop_count"`
	ConditionalCount    int     `json:"conditional_count"`
	FunctionCount       int     `json:"function_count"`
	DuplicateBlockCount int     `json:"duplicate_block_count"`
	MaxNestingDepth     int     `json:"max_nesting_depth"`
	EstimatedComplexity float64 `json:"estimated_complexity"`
}

// Delta computes after - before for every numeric metrics field. A zero-value
// side contributes zeros, so a missing metrics object compares as all-zero
// rather than being omitted.
func Delta(before, after ComplexityMetrics) MetricsDelta {
	return MetricsDelta{
		LinesOfCode:         after.LinesOfCode - before.LinesOfCode,
		LoopCount:           after.LoopCount - before.LoopCount,
		ConditionalCount:    after.ConditionalCount - before.ConditionalCount,
		FunctionCount:       after.FunctionCount - before.FunctionCount,
		DuplicateBlockCount: after.DuplicateBlockCount - before.DuplicateBlockCount,
		MaxNestingDepth:     after.MaxNestingDepth - before.MaxNestingDepth,
		EstimatedComplexity: round2(after.EstimatedComplexity - before.EstimatedComplexity),
	}
}
