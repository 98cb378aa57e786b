package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Scanner enumerates source files under a workspace root
type Scanner struct {
	skipDirs     map[string]bool
	excludeGlobs []string
	classifier   *Classifier
}

// NewScanner creates a Scanner that prunes directories named in skipDirs and drops paths
// matching any of excludeGlobs (doublestar patterns against the root-relative slash path).
func NewScanner(skipDirs, excludeGlobs []string, classifier *Classifier) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, excludeGlobs: excludeGlobs, classifier: classifier}
}

// Scan calls fn for every file with a recognized extension under root, in lexical order.
// Hidden directories are descended into; only build output directories are pruned.
func (s *Scanner) Scan(ctx context.Context, root string, fn func(path string)) error {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("workspace root does not exist: %s", root)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace root is not a directory: %s", root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// unreadable subdirectory; keep walking the rest of the tree
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return err
		}

		if d.IsDir() {
			if path != root && s.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.classifier.HasExtension(path) || s.excluded(root, path) {
			return nil
		}
		fn(path)
		return nil
	})
}

func (s *Scanner) excluded(root, path string) bool {
	if len(s.excludeGlobs) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.excludeGlobs {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
