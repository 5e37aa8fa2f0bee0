package analysis

import (
	"path"
	"sort"
	"strings"
)

// SourceUnit is one file submitted for analysis. Units are immutable once
// created and owned by the request that created them.
type SourceUnit struct {
	Path     string
	Language Language
	Text     string
}

// Edge is a resolved, directed interconnection between two project files.
type Edge struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Kind RefKind `json:"kind"`
}

// BuildGraph resolves every file's raw references against the project file
// set. References that resolve become deduplicated directed edges; dangling
// references are dropped from the edge list and counted. External URLs never
// resolve.
func BuildGraph(files map[string]Language, refs map[string][]Reference) ([]Edge, int) {
	var edges []Edge
	seen := make(map[Edge]bool)
	unresolved := 0

	for from, list := range refs {
		lang := files[from]
		for _, ref := range list {
			to, ok := resolveReference(ref.Target, from, lang, files)
			if !ok {
				unresolved++
				continue
			}
			e := Edge{From: from, To: to, Kind: ref.Kind}
			if seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, e)
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Kind < edges[j].Kind
	})
	return edges, unresolved
}

// resolveReference maps a raw reference to a project file path. Candidates
// are tried relative to the referencing file first, then from the project
// root, each with the language's candidate extensions when the reference
// carries none.
func resolveReference(target, from string, lang Language, files map[string]Language) (string, bool) {
	target = strings.TrimSpace(target)
	// strip query strings and fragments
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if target == "" || isExternal(target) {
		return "", false
	}

	spec := specFor(lang)
	if spec != nil && spec.dottedModules && !strings.ContainsAny(target, "/\\") {
		target = strings.ReplaceAll(target, ".", "/")
	}
	target = strings.TrimPrefix(target, "/")

	var exts []string
	if path.Ext(target) == "" && spec != nil {
		exts = spec.resolveExts
	}

	fromDir := path.Dir(from)
	for _, base := range []string{path.Join(fromDir, target), path.Clean(target)} {
		base = strings.TrimPrefix(base, "./")
		if strings.HasPrefix(base, "..") {
			continue
		}
		if _, ok := files[base]; ok {
			return base, true
		}
		for _, ext := range exts {
			if _, ok := files[base+ext]; ok {
				return base + ext, true
			}
		}
	}
	return "", false
}

func isExternal(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//")
}
