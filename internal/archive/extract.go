// Package archive turns an uploaded ZIP into source units: bounded in size,
// safe against path traversal, tolerant of junk the scan has no use for.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"greenlens/internal/analysis"
)

var (
	// ErrTooLarge means the archive or its extracted contents exceed the
	// configured bounds. Request-level failure, no partial processing.
	ErrTooLarge = errors.New("archive: exceeds size limit")
	// ErrExtract means the archive itself cannot be read.
	ErrExtract = errors.New("archive: cannot read archive")
)

const (
	// MaxArchiveBytes bounds the uploaded archive itself.
	MaxArchiveBytes = 250 << 20
	// maxExtractedBytes bounds the total uncompressed payload (zip bombs).
	maxExtractedBytes = 500 << 20
	// maxFileBytes bounds one extracted file.
	maxFileBytes = 4 << 20
	maxFiles     = 5000
)

// Directories never worth scanning, regardless of ignore rules.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".cache":       true,
}

// Extract unpacks a ZIP into source units with forward-slash paths relative
// to the project root. A shared top-level directory (the usual download
// wrapper) is stripped. The second return value lists skipped entries with
// reasons.
func Extract(data []byte) ([]analysis.SourceUnit, []string, error) {
	if len(data) > MaxArchiveBytes {
		return nil, nil, ErrTooLarge
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}

	prefix := commonPrefix(zr.File)
	matcher := loadIgnoreRules(zr, prefix)

	var units []analysis.SourceUnit
	var skipped []string
	var total int64

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rel, ok := safeRelPath(f.Name, prefix)
		if !ok {
			skipped = append(skipped, f.Name+": unsafe path")
			continue
		}
		if inSkippedDir(rel) {
			continue
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			skipped = append(skipped, rel+": ignored")
			continue
		}
		if len(units) >= maxFiles {
			skipped = append(skipped, rel+": file limit reached")
			continue
		}
		if f.UncompressedSize64 > maxFileBytes {
			skipped = append(skipped, rel+": too large")
			continue
		}

		content, err := readZipFile(f)
		if err != nil {
			skipped = append(skipped, rel+": unreadable")
			continue
		}
		total += int64(len(content))
		if total > maxExtractedBytes {
			return nil, nil, ErrTooLarge
		}
		if bytes.ContainsRune(content, 0) {
			skipped = append(skipped, rel+": binary")
			continue
		}
		units = append(units, analysis.SourceUnit{Path: rel, Text: string(content)})
	}
	return units, skipped, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	// +1 so a lying header is caught by the size check above
	return io.ReadAll(io.LimitReader(rc, maxFileBytes+1))
}

// safeRelPath normalizes a zip entry name and rejects traversal attempts.
func safeRelPath(name, prefix string) (string, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	cleaned := path.Clean(name)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	cleaned = strings.TrimPrefix(cleaned, prefix)
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

func inSkippedDir(rel string) bool {
	for _, part := range strings.Split(path.Dir(rel), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

// commonPrefix returns "dir/" when every entry lives under one top-level
// directory, else "".
func commonPrefix(files []*zip.File) string {
	var top string
	for _, f := range files {
		name := strings.ReplaceAll(f.Name, `\`, "/")
		i := strings.Index(name, "/")
		if i <= 0 {
			return ""
		}
		if top == "" {
			top = name[:i]
		} else if name[:i] != top {
			return ""
		}
	}
	if top == "" {
		return ""
	}
	return top + "/"
}

// loadIgnoreRules compiles the archive's root .gitignore when present.
func loadIgnoreRules(zr *zip.Reader, prefix string) *ignore.GitIgnore {
	for _, f := range zr.File {
		rel, ok := safeRelPath(f.Name, prefix)
		if !ok || rel != ".gitignore" {
			continue
		}
		content, err := readZipFile(f)
		if err != nil {
			return nil
		}
		return ignore.CompileIgnoreLines(strings.Split(string(content), "\n")...)
	}
	return nil
}
