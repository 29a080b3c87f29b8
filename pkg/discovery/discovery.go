// Package discovery finds markdown files under a workspace root.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	DefaultInclude = "**/*.md"
	DefaultExclude = "**/node_modules/**"
)

// Finder walks a workspace root for files matching Include and not Exclude.
type Finder struct {
	Root    string
	Include string
	Exclude string
}

// NewFinder creates a finder, validating both globs.
func NewFinder(root, include, exclude string) (*Finder, error) {
	if include == "" {
		include = DefaultInclude
	}
	for _, pat := range []string{include, exclude} {
		if pat != "" && !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid glob pattern %q", pat)
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	return &Finder{Root: abs, Include: include, Exclude: exclude}, nil
}

// Find returns the absolute paths of all matching files. Excluded
// directories are not descended into.
func (f *Finder) Find(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(f.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == f.Root {
				return walkErr
			}
			// Unreadable subtrees are skipped.
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(f.Root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if f.excluded(rel) || f.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&os.ModeSymlink == 0 {
			return nil
		}
		if f.excluded(rel) {
			return nil
		}
		if ok, _ := doublestar.Match(f.Include, rel); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", f.Root, err)
	}
	return files, nil
}

func (f *Finder) excluded(rel string) bool {
	if f.Exclude == "" {
		return false
	}
	ok, _ := doublestar.Match(f.Exclude, rel)
	return ok
}
