package cas

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/zerr"
)

// resolveFiles expands patterns relative to root into a sorted, de-duplicated
// list of slash-separated file paths. Patterns may use ** to cross directories.
// A pattern without matches contributes nothing.
func resolveFiles(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	unique := make(map[string]bool)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(filepath.Clean(pattern))
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(zerr.New("invalid cache pattern"), "pattern", pattern)
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob cache pattern"), "pattern", pattern)
		}
		for _, match := range matches {
			unique[match] = true
		}
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	sort.Strings(result)
	return result, nil
}

// safeJoin joins a slash-separated archive entry to root and rejects entries
// that would land outside of it.
func safeJoin(root, name string) (string, bool) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}
