package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"greenlens/internal/artifact"
	"greenlens/internal/events"
	"greenlens/internal/history"
	"greenlens/internal/llmclient"
	"greenlens/internal/suggest"
)

func newTestService(client llmclient.Client) (*Service, *history.MemoryStore, *events.Hub) {
	store := history.NewMemoryStore()
	hub := events.NewHub()
	svc := New(suggest.NewEngine(client, time.Second), store, artifact.NewMemoryStore(), hub, 0.475)
	return svc, store, hub
}

const duplicateHeavySnippet = `rows = load()
process(rows)
process(rows)
process(rows)
save(rows)`

func TestAnalyzeSnippetFallbackFlow(t *testing.T) {
	svc, store, _ := newTestService(nil)

	res, err := svc.AnalyzeSnippet(context.Background(), duplicateHeavySnippet, "python")
	require.NoError(t, err)

	require.True(t, res.Suggestion.UsedFallback)
	require.Empty(t, res.Suggestion.AIModelUsed)
	// dedupe removes two repeated calls
	require.Equal(t, -2, res.Analysis.Delta.LinesOfCode)
	require.Less(t, res.Analysis.After.EstimatedComplexity, res.Analysis.Before.EstimatedComplexity)
	require.Greater(t, res.CO2.EnergySavedKWh, 0.0)
	require.GreaterOrEqual(t, res.SessionEmissions.DurationS, 0.0)

	wantTrace := []State{
		StatePendingBefore,
		StateBeforeScored,
		StateAwaitingSuggestion,
		StateSuggestionFallback,
		StateAfterScored,
		StateDeltaComputed,
		StateDone,
	}
	require.Equal(t, wantTrace, res.trace)

	recent, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "snippet", recent[0].Kind)
	require.True(t, recent[0].UsedFallback)
}

func TestAnalyzeSnippetModelFlow(t *testing.T) {
	resp := json.RawMessage(`{
		"summary": "Use a single pass.",
		"confidence": "high",
		"analysis": [{"issue": "Repeated work", "impact": "Wasted cycles", "action": "Merge the passes"}],
		"alternative_code": "rows = load()\nprocess(rows)\nsave(rows)"
	}`)
	svc, _, _ := newTestService(&llmclient.FakeClient{Responses: []json.RawMessage{resp}})

	res, err := svc.AnalyzeSnippet(context.Background(), duplicateHeavySnippet, "python")
	require.NoError(t, err)
	require.False(t, res.Suggestion.UsedFallback)
	require.Equal(t, "fake", res.Suggestion.AIModelUsed)
	require.Contains(t, res.trace, StateSuggestionReceived)
	require.NotContains(t, res.trace, StateSuggestionFallback)
	require.Equal(t, StateDone, res.trace[len(res.trace)-1])
}

func TestAnalyzeSnippetInvalidInput(t *testing.T) {
	svc, store, _ := newTestService(nil)

	_, err := svc.AnalyzeSnippet(context.Background(), "   ", "python")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AnalyzeSnippet(context.Background(), "x = 1", "golang")
	require.ErrorIs(t, err, ErrInvalidInput)

	recent, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, recent, "invalid requests must not be recorded")
}

func TestAnalyzeSnippetUnscorableSuggestionFallsBackToBefore(t *testing.T) {
	// Alternative code containing a NUL cannot be scored: after == before.
	resp := json.RawMessage(`{"summary":"bad","alternative_code":"\u0000broken"}`)
	svc, _, _ := newTestService(&llmclient.FakeClient{Responses: []json.RawMessage{resp}})

	res, err := svc.AnalyzeSnippet(context.Background(), duplicateHeavySnippet, "python")
	require.NoError(t, err)
	require.Equal(t, res.Analysis.Before, res.Analysis.After)
	require.Zero(t, res.Analysis.Delta.LinesOfCode)
	require.Zero(t, res.CO2.EnergySavedKWh)
}

func TestAnalyzeSnippetPublishesEvent(t *testing.T) {
	svc, _, hub := newTestService(nil)
	ch, cancel := hub.Subscribe()
	defer cancel()

	_, err := svc.AnalyzeSnippet(context.Background(), duplicateHeavySnippet, "python")
	require.NoError(t, err)

	select {
	case ev := <-ch:
		require.Equal(t, "snippet", ev.Kind)
		require.Equal(t, "python", ev.Language)
		require.True(t, ev.UsedFallback)
	case <-time.After(time.Second):
		t.Fatalf("no event published")
	}
}

func projectZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"app.py":   "import utils\n\nfor x in range(10):\n    for y in range(10):\n        if x and y:\n            print(x, y)\n",
		"utils.py": "def helper():\n    return 1\n",
		"web.js":   "function run() { if (a) { b() } }\n",
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestAnalyzeProjectEndToEnd(t *testing.T) {
	svc, store, _ := newTestService(nil)

	res, err := svc.AnalyzeProject(context.Background(), projectZip(t))
	require.NoError(t, err)

	require.Equal(t, 3, res.Project.Summary.TotalFiles)
	require.Equal(t, 1, res.Project.Summary.InterconnectionCount)
	require.Greater(t, res.CO2.EnergyKWh, 0.0)
	require.NotEmpty(t, res.AnalysisID)
	require.Len(t, res.Suggestions, 3)
	for _, fs := range res.Suggestions {
		require.NotEmpty(t, fs.Path)
		require.True(t, fs.Suggestion.UsedFallback)
	}
	// most complex file first
	require.Equal(t, "app.py", res.Suggestions[0].Path)

	recent, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "project", recent[0].Kind)
}

func TestAnalyzeProjectStoresArchive(t *testing.T) {
	store := history.NewMemoryStore()
	artifacts := artifact.NewMemoryStore()
	svc := New(suggest.NewEngine(nil, time.Second), store, artifacts, events.NewHub(), 0.475)

	data := projectZip(t)
	res, err := svc.AnalyzeProject(context.Background(), data)
	require.NoError(t, err)

	stored, err := artifacts.Get(context.Background(), res.AnalysisID, "upload.zip")
	require.NoError(t, err)
	require.Equal(t, data, stored)
}

func TestAnalyzeProjectBadInput(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.AnalyzeProject(context.Background(), []byte("not a zip"))
	require.ErrorIs(t, err, ErrBadArchive)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.Close())
	_, err = svc.AnalyzeProject(context.Background(), buf.Bytes())
	require.ErrorIs(t, err, ErrBadArchive, "empty archive has nothing to analyze")
}

func TestAnalyzeProjectRejectsOversizedUpload(t *testing.T) {
	svc, _, _ := newTestService(nil)
	_, err := svc.AnalyzeProject(context.Background(), make([]byte, 251<<20))
	require.ErrorIs(t, err, ErrArchiveTooLarge)
}

func TestHistoryPassthrough(t *testing.T) {
	svc, store, _ := newTestService(nil)
	_, err := store.Insert(context.Background(), history.Record{Kind: "snippet", Language: "python"})
	require.NoError(t, err)

	records, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, d.TotalAnalyses)
}

type failingStore struct{ history.Store }

func (f failingStore) Insert(ctx context.Context, rec history.Record) (int64, error) {
	return 0, errors.New("db down")
}

func TestAnalyzeSnippetSurvivesStoreFailure(t *testing.T) {
	svc := New(suggest.NewEngine(nil, time.Second), failingStore{history.NewMemoryStore()}, nil, events.NewHub(), 0.475)

	res, err := svc.AnalyzeSnippet(context.Background(), duplicateHeavySnippet, "python")
	require.NoError(t, err, "a failing store must not fail the analysis")
	require.Equal(t, StateDone, res.trace[len(res.trace)-1])
}
