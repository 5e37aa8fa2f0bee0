package analysis

import (
	"reflect"
	"testing"
)

func TestExtractReferencesPython(t *testing.T) {
	text := "import utils\nfrom app.models import User\nimport os, sys\n"
	refs := ExtractReferences(text, LangPython)
	var targets []string
	for _, r := range refs {
		targets = append(targets, r.Target)
	}
	want := []string{"utils", "os", "app.models"}
	if !reflect.DeepEqual(targets, want) {
		t.Fatalf("targets = %v, want %v", targets, want)
	}
}

func TestExtractReferencesJavaScript(t *testing.T) {
	text := `import { helper } from './lib/helper'
const fs = require('fs')
const mod = import('./lazy.js')
`
	refs := ExtractReferences(text, LangJavaScript)
	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3: %+v", len(refs), refs)
	}
	if refs[0].Kind != RefImport || refs[0].Target != "./lib/helper" {
		t.Fatalf("unexpected first ref: %+v", refs[0])
	}
	if refs[1].Kind != RefRequire || refs[1].Target != "fs" {
		t.Fatalf("unexpected second ref: %+v", refs[1])
	}
	if refs[2].Kind != RefDynamicImport || refs[2].Target != "./lazy.js" {
		t.Fatalf("unexpected third ref: %+v", refs[2])
	}
}

func TestBuildGraphResolvesPythonModules(t *testing.T) {
	files := map[string]Language{
		"app.py":           LangPython,
		"utils.py":         LangPython,
		"models/user.py":   LangPython,
		"models/common.py": LangPython,
	}
	refs := map[string][]Reference{
		"app.py": {
			{Target: "utils", Kind: RefImport},
			{Target: "models.user", Kind: RefImport},
			{Target: "missing_module", Kind: RefImport},
		},
		"models/user.py": {
			{Target: "common", Kind: RefImport},
		},
	}
	edges, unresolved := BuildGraph(files, refs)
	if unresolved != 1 {
		t.Fatalf("unresolved = %d, want 1", unresolved)
	}
	want := []Edge{
		{From: "app.py", To: "models/user.py", Kind: RefImport},
		{From: "app.py", To: "utils.py", Kind: RefImport},
		{From: "models/user.py", To: "models/common.py", Kind: RefImport},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Fatalf("edges = %+v, want %+v", edges, want)
	}
}

func TestBuildGraphHTMLAssets(t *testing.T) {
	files := map[string]Language{
		"index.html":  LangHTML,
		"js/app.js":   LangJavaScript,
		"css/site.css": LangCSS,
	}
	refs := map[string][]Reference{
		"index.html": {
			{Target: "js/app.js?v=3", Kind: RefScriptSrc},
			{Target: "css/site.css", Kind: RefLinkHref},
			{Target: "https://cdn.example.com/lib.js", Kind: RefScriptSrc},
		},
	}
	edges, unresolved := BuildGraph(files, refs)
	if unresolved != 1 {
		t.Fatalf("unresolved = %d, want 1 (the external URL)", unresolved)
	}
	if len(edges) != 2 {
		t.Fatalf("edges = %+v, want 2 entries", edges)
	}
	if edges[0].To != "css/site.css" || edges[1].To != "js/app.js" {
		t.Fatalf("unexpected edge order: %+v", edges)
	}
}

func TestBuildGraphDedupes(t *testing.T) {
	files := map[string]Language{"a.py": LangPython, "b.py": LangPython}
	refs := map[string][]Reference{
		"a.py": {
			{Target: "b", Kind: RefImport},
			{Target: "b", Kind: RefImport},
		},
	}
	edges, unresolved := BuildGraph(files, refs)
	if unresolved != 0 {
		t.Fatalf("unresolved = %d, want 0", unresolved)
	}
	if len(edges) != 1 {
		t.Fatalf("expected one deduplicated edge, got %+v", edges)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	files := map[string]Language{"sub/a.js": LangJavaScript}
	refs := map[string][]Reference{
		"sub/a.js": {{Target: "../../outside", Kind: RefImport}},
	}
	edges, unresolved := BuildGraph(files, refs)
	if len(edges) != 0 || unresolved != 1 {
		t.Fatalf("traversal target must stay unresolved: edges=%v unresolved=%d", edges, unresolved)
	}
}
