// Package filter selects files based on include/exclude glob patterns.
package filter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Filter selects files based on include/exclude patterns. Patterns are
// matched with filepath.Match against both the slash-cleaned path and its
// base name, so "*.enc" matches files at any depth. Empty includes means
// "match all". Excludes always win.
type Filter struct {
	includes []string
	excludes []string
}

// NewFilter validates the patterns and returns a reusable filter.
func NewFilter(includes, excludes []string) (*Filter, error) {
	for _, pattern := range append(append([]string{}, includes...), excludes...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
		}
	}

	return &Filter{
		includes: normalizePatterns(includes),
		excludes: normalizePatterns(excludes),
	}, nil
}

// match returns true if the relative path should be included.
func (f *Filter) match(path string, hasIncludes bool) bool {
	included := !hasIncludes || matchAny(f.includes, path)
	excluded := matchAny(f.excludes, path)

	return included && !excluded
}

func matchAny(patterns []string, path string) bool {
	base := filepath.Base(path)

	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}

		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}

	return false
}

// normalizePatterns strips leading "./" from patterns so they match cleaned paths.
func normalizePatterns(patterns []string) []string {
	normalized := make([]string, len(patterns))

	for i, p := range patterns {
		normalized[i] = strings.TrimPrefix(p, "./")
	}

	return normalized
}

// Resolve takes positional args (files/directories) and include/exclude patterns.
// Files are added directly (bypassing filtering). Directories are walked and filtered.
// hasIncludes indicates whether include filtering was requested (flag provided),
// regardless of whether the pattern list is empty.
// Returns matched files and total candidates scanned.
func Resolve(args, includes, excludes []string, hasIncludes bool) (files []string, scanned int, err error) {
	flt, err := NewFilter(includes, excludes)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]struct{})

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := os.Stat(arg)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %q: %w", arg, err)
		}

		if !info.IsDir() {
			// Explicit file: bypass filtering, add directly.
			scanned++

			if _, ok := seen[arg]; ok {
				continue
			}

			seen[arg] = struct{}{}
			files = append(files, arg)

			continue
		}

		// Directory: walk and filter.
		walked, total, err := walkDir(arg, flt, hasIncludes)
		if err != nil {
			return nil, 0, err
		}

		scanned += total

		for _, path := range walked {
			if _, ok := seen[path]; ok {
				continue
			}

			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	if len(files) == 0 {
		return nil, scanned, fmt.Errorf("no files matched the provided patterns: %v", args)
	}

	return files, scanned, nil
}

// walkDir walks root recursively, returning files that pass the filter.
func walkDir(root string, flt *Filter, hasIncludes bool) (files []string, total int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		total++

		// Use forward slashes for pattern matching consistency.
		clean := filepath.ToSlash(filepath.Clean(path))

		if !flt.match(clean, hasIncludes) {
			return nil
		}

		files = append(files, path)

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walking %q: %w", root, err)
	}

	return files, total, nil
}
