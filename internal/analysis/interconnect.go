package analysis

// RefKind classifies how one file references another.
type RefKind string

const (
	RefImport        RefKind = "import"
	RefRequire       RefKind = "require"
	RefDynamicImport RefKind = "dynamic_import"
	RefScriptSrc     RefKind = "script_src"
	RefLinkHref      RefKind = "link_href"
	RefCSSImport     RefKind = "css_import"
)

// Reference is a raw, unresolved reference string pulled out of a file.
type Reference struct {
	Target string `json:"target"`
	Kind   RefKind `json:"kind"`
}

// ExtractReferences scans one file's text with the language's reference
// patterns and returns the raw reference strings in match order. Targets are
// not yet resolved against any project; duplicates are preserved (resolution
// dedupes).
func ExtractReferences(text string, lang Language) []Reference {
	spec := specFor(lang)
	if spec == nil {
		return nil
	}
	var refs []Reference
	for _, p := range spec.refPatterns {
		for _, match := range p.re.FindAllStringSubmatch(text, -1) {
			if len(match) < 2 {
				continue
			}
			target := match[1]
			if target == "" {
				continue
			}
			refs = append(refs, Reference{Target: target, Kind: p.kind})
		}
	}
	return refs
}
