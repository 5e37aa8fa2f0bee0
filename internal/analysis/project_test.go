package analysis

import "testing"

func sampleUnits() []SourceUnit {
	return []SourceUnit{
		{Path: "app.py", Text: "import utils\n\nfor x in range(10):\n    if x:\n        print(x)\n"},
		{Path: "utils.py", Text: "def helper():\n    return 1\n"},
		{Path: "index.html", Text: `<html><script src="js/app.js"></script></html>`},
		{Path: "js/app.js", Text: "function run() { if (x) { go() } }\n"},
		{Path: "notes.txt", Text: "remember to water the plants\ntwice\n"},
	}
}

func TestAnalyzeProjectAggregates(t *testing.T) {
	pa := AnalyzeProject(sampleUnits())

	if pa.Summary.TotalFiles != 5 {
		t.Fatalf("total_files = %d, want 5", pa.Summary.TotalFiles)
	}

	wantLOC := 0
	wantComplexity := 0.0
	for _, fa := range pa.Files {
		wantLOC += fa.Metrics.LinesOfCode
		wantComplexity += fa.Metrics.EstimatedComplexity
	}
	if pa.Summary.TotalLinesOfCode != wantLOC {
		t.Fatalf("total_lines_of_code = %d, want %d", pa.Summary.TotalLinesOfCode, wantLOC)
	}
	if pa.Summary.TotalComplexity != round2(wantComplexity) {
		t.Fatalf("total_complexity = %v, want %v", pa.Summary.TotalComplexity, wantComplexity)
	}

	wantLangs := []string{"html", "javascript", "python"}
	if len(pa.Summary.Languages) != len(wantLangs) {
		t.Fatalf("languages = %v, want %v", pa.Summary.Languages, wantLangs)
	}
	for i, lang := range wantLangs {
		if pa.Summary.Languages[i] != lang {
			t.Fatalf("languages = %v, want %v", pa.Summary.Languages, wantLangs)
		}
	}

	if pa.Summary.InterconnectionCount != 2 {
		t.Fatalf("interconnection_count = %d, want 2: %+v", pa.Summary.InterconnectionCount, pa.Interconnections)
	}
}

func TestAnalyzeProjectUnknownFilesStillCount(t *testing.T) {
	pa := AnalyzeProject(sampleUnits())
	var notes *FileAnalysis
	for i := range pa.Files {
		if pa.Files[i].Path == "notes.txt" {
			notes = &pa.Files[i]
		}
	}
	if notes == nil {
		t.Fatalf("notes.txt missing from results")
	}
	if notes.Error == "" {
		t.Fatalf("unsupported file must carry an error")
	}
	if notes.Metrics.LinesOfCode != 2 {
		t.Fatalf("unsupported file keeps its line count, got %d", notes.Metrics.LinesOfCode)
	}
	if notes.Metrics.EstimatedComplexity != 0 {
		t.Fatalf("unsupported file must not be scored, got %v", notes.Metrics.EstimatedComplexity)
	}
}

func TestAnalyzeProjectErrorBoundary(t *testing.T) {
	units := append(sampleUnits(), SourceUnit{Path: "bad.py", Text: "\x00\x01\x02"})
	pa := AnalyzeProject(units)
	if pa.Summary.TotalFiles != 6 {
		t.Fatalf("total_files = %d, want 6", pa.Summary.TotalFiles)
	}
	scored := 0
	for _, fa := range pa.Files {
		if fa.Path == "bad.py" && fa.Error == "" {
			t.Fatalf("binary file must record an error")
		}
		if fa.Error == "" {
			scored++
		}
	}
	if scored != 4 {
		t.Fatalf("scored = %d, want 4", scored)
	}
}

func TestTopFiles(t *testing.T) {
	pa := AnalyzeProject(sampleUnits())
	top := TopFiles(pa, 2)
	if len(top) != 2 {
		t.Fatalf("got %d files, want 2", len(top))
	}
	if top[0].Metrics.EstimatedComplexity < top[1].Metrics.EstimatedComplexity {
		t.Fatalf("top files out of order: %+v", top)
	}
	for _, fa := range top {
		if fa.Error != "" {
			t.Fatalf("errored file in top list: %+v", fa)
		}
	}
	if got := TopFiles(pa, 100); len(got) != 4 {
		t.Fatalf("over-asking returns all scored files, got %d", len(got))
	}
}
