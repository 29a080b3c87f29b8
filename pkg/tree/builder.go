package tree

import (
	"context"
	"io"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CommentCounter reports how many review comments are attached to a file.
type CommentCounter interface {
	CommentCount(ctx context.Context, path string) (int, error)
}

// Builder groups discovered markdown files into a folder tree.
type Builder struct {
	Root     string
	Comments CommentCounter
	Logger   logrus.FieldLogger
}

// NewBuilder creates a builder for files under root.
func NewBuilder(root string, comments CommentCounter, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Builder{Root: root, Comments: comments, Logger: logger}
}

// GroupKey returns the directory of path relative to root, with "" for
// files directly under root.
func GroupKey(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}

// Build groups files by GroupKey and returns the root-level files first,
// unwrapped, then one folder node per directory in key order. Comment
// lookups that fail count as zero; only context cancellation is returned.
//
// Folder keys compare byte-wise, which matches UTF-16 code unit order except
// for keys mixing characters at U+E000 and above with supplementary-plane
// characters.
func (b *Builder) Build(ctx context.Context, files []string) ([]Node, error) {
	buckets := make(map[string][]string)
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		key := GroupKey(b.Root, f)
		buckets[key] = append(buckets[key], f)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	col := collate.New(language.Und)
	result := make([]Node, 0, len(keys))

	for _, key := range keys {
		paths := buckets[key]
		slices.SortStableFunc(paths, func(a, c string) int {
			return col.CompareString(filepath.Base(a), filepath.Base(c))
		})

		entries := make([]*FileEntry, 0, len(paths))
		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entries = append(entries, &FileEntry{
				Path:         p,
				Name:         filepath.Base(p),
				CommentCount: b.commentCount(ctx, p),
			})
		}

		if key == "" {
			for _, e := range entries {
				result = append(result, e)
			}
			continue
		}
		result = append(result, &FolderEntry{
			Key:      key,
			Path:     filepath.Join(b.Root, key),
			Children: entries,
		})
	}

	return result, nil
}

func (b *Builder) commentCount(ctx context.Context, path string) int {
	if b.Comments == nil {
		return 0
	}
	n, err := b.Comments.CommentCount(ctx, path)
	if err != nil {
		b.Logger.WithError(err).WithField("path", path).Debug("sidecar lookup failed, using zero comments")
		return 0
	}
	return n
}
