// Package scan walks a target directory tree and selects entries whose
// absolute path length exceeds a threshold, ordered so that descendants
// always come before their ancestors.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidTarget indicates the scan target does not exist or is not a
// directory. It is the only fatal scan error; everything below the root
// degrades to a per-path error.
var ErrInvalidTarget = errors.New("target is not an existing directory")

// Entry is a single filesystem node found under the target root.
// Length caches the character count of Path so ordering does not re-measure
// strings. Entries are immutable once produced.
type Entry struct {
	Path   string // absolute path
	Length int    // rune count of Path
	IsDir  bool
}

// Result holds the outcome of a scan: every enumerated entry plus any
// per-path errors that were skipped over.
type Result struct {
	Root    string
	Entries []Entry
	Errors  []error
}

// Scanner enumerates every filesystem entry beneath a target root.
type Scanner struct {
	root     string
	excludes []string
}

// NewScanner creates a Scanner for the given target root. The root must
// exist and be a directory; otherwise ErrInvalidTarget is returned.
// excludes are doublestar glob patterns matched against slash-separated
// paths relative to the root; a matching directory prunes its subtree.
func NewScanner(root string, excludes []string) (*Scanner, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, absRoot)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, absRoot)
	}

	return &Scanner{
		root:     absRoot,
		excludes: excludes,
	}, nil
}

// Root returns the absolute target root the scanner is confined to.
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the full subtree, hidden entries included, producing one Entry
// per node. Symlinks are enumerated as their own path and never followed.
// Per-path errors (typically permission denied) are recorded in the result
// and the walk continues; they never abort the scan.
func (s *Scanner) Scan() (*Result, error) {
	result := &Result{
		Root:    s.root,
		Entries: make([]Entry, 0),
		Errors:  make([]error, 0),
	}

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // continue walking
		}

		// The root itself is the container, not a candidate.
		if path == s.root {
			return nil
		}

		if s.isExcluded(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		result.Entries = append(result.Entries, Entry{
			Path:   path,
			Length: utf8.RuneCountInString(path),
			IsDir:  d.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk target: %w", err)
	}

	return result, nil
}

// isExcluded reports whether the path, relative to the root, matches any
// exclude pattern.
func (s *Scanner) isExcluded(path string) bool {
	if len(s.excludes) == 0 {
		return false
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range s.excludes {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		// Directory patterns written with a trailing slash exclude the
		// whole subtree.
		if strings.HasSuffix(pattern, "/") {
			if matched, _ := doublestar.Match(strings.TrimSuffix(pattern, "/"), rel); matched {
				return true
			}
		}
	}
	return false
}
