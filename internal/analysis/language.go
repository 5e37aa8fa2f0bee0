package analysis

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Language identifies one of the supported source languages. The zero value
// is not valid; unknown content maps to LangUnknown.
type Language string

const (
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangUnknown    Language = "unknown"
)

// languageSpec carries everything the scorer and extractor need for one
// language. Specs are immutable; the engines never switch on the language
// itself, only on the current spec's tables.
type languageSpec struct {
	loopPatterns        []*regexp.Regexp
	conditionalPatterns []*regexp.Regexp
	functionPatterns    []*regexp.Regexp
	refPatterns         []refPattern
	// candidate extensions tried when resolving an extension-less reference
	resolveExts []string
	// indentation-based languages track nesting by leading whitespace,
	// everything else by brace depth
	indentNesting bool
	// dotted module references (import a.b.c) map to directory paths
	dottedModules bool
}

type refPattern struct {
	re   *regexp.Regexp
	kind RefKind
}

var languageSpecs = map[Language]*languageSpec{
	LangPython: {
		loopPatterns: compileAll(`\bfor\b`, `\bwhile\b`),
		conditionalPatterns: compileAll(
			`\bif\b`, `\belif\b`, `\belse\b`, `\bmatch\b`),
		functionPatterns: compileAll(
			`(?m)^[ \t]*def\s+\w+`, `(?m)^[ \t]*class\s+\w+`),
		refPatterns: []refPattern{
			{regexp.MustCompile(`(?m)^[ \t]*import\s+([A-Za-z_][\w.]*)`), RefImport},
			{regexp.MustCompile(`(?m)^[ \t]*from\s+([A-Za-z_][\w.]*)\s+import\b`), RefImport},
		},
		resolveExts:   []string{".py"},
		indentNesting: true,
		dottedModules: true,
	},
	LangJava: {
		loopPatterns: compileAll(`\bfor\b`, `\bwhile\b`, `\bdo\b`),
		conditionalPatterns: compileAll(
			`\bif\b`, `\belse\b`, `\bswitch\b`, `\bcase\b`),
		functionPatterns: compileAll(
			`\bclass\b`, `\bvoid\b`, `\bpublic\b`, `\bprivate\b`, `\bprotected\b`),
		refPatterns: []refPattern{
			{regexp.MustCompile(`(?m)^[ \t]*import\s+(?:static\s+)?([A-Za-z_][\w.]*)\s*;`), RefImport},
		},
		resolveExts:   []string{".java"},
		dottedModules: true,
	},
	LangJavaScript: {
		loopPatterns: compileAll(`\bfor\b`, `\bwhile\b`, `\bdo\b`),
		conditionalPatterns: compileAll(
			`\bif\b`, `\belse\b`, `\bswitch\b`, `\bcase\b`),
		functionPatterns: compileAll(`\bfunction\b`, `\bclass\b`, `=>`),
		refPatterns: []refPattern{
			{regexp.MustCompile(`import\s+[^'";]*?from\s*['"]([^'"]+)['"]`), RefImport},
			{regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"]+)['"]`), RefRequire},
			{regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"]+)['"]`), RefDynamicImport},
		},
		resolveExts: []string{".js", ".jsx"},
	},
	LangHTML: {
		refPatterns: []refPattern{
			{regexp.MustCompile(`(?i)<script[^>]+src=["']([^"']+)["']`), RefScriptSrc},
			{regexp.MustCompile(`(?i)<link[^>]+href=["']([^"']+)["']`), RefLinkHref},
		},
		resolveExts:   []string{".js", ".css", ".html"},
		indentNesting: true,
	},
	LangCSS: {
		conditionalPatterns: compileAll(`@media\b`),
		refPatterns: []refPattern{
			{regexp.MustCompile(`@import\s+["']([^"']+)["']`), RefCSSImport},
			{regexp.MustCompile(`@import\s+url\(\s*["']?([^"')]+)["']?\s*\)`), RefCSSImport},
		},
		resolveExts: []string{".css"},
	},
}

var extToLanguage = map[string]Language{
	".py":   LangPython,
	".java": LangJava,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".html": LangHTML,
	".htm":  LangHTML,
	".css":  LangCSS,
}

// pythonSniff matches statement forms distinctive enough that a file with
// several hits is very likely Python even without a .py extension.
var pythonSniff = regexp.MustCompile(`(?m)^[ \t]*(?:def\s+\w+\s*\(|class\s+\w+|import\s+\w|from\s+\w[\w.]*\s+import\b|elif\b)`)

// ParseLanguage validates a caller-supplied language token.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := languageSpecs[lang]; !ok {
		return LangUnknown, fmt.Errorf("unsupported language %q", s)
	}
	return lang, nil
}

// ClassifyFile maps a file name (and content, as a fallback) to a language.
// The extension wins when recognized; otherwise the content is sniffed for
// Python and everything else is unknown.
func ClassifyFile(name, content string) Language {
	ext := strings.ToLower(path.Ext(name))
	if lang, ok := extToLanguage[ext]; ok {
		return lang
	}
	if len(pythonSniff.FindAllStringIndex(content, 3)) >= 2 {
		return LangPython
	}
	return LangUnknown
}

func specFor(lang Language) *languageSpec {
	return languageSpecs[lang]
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
