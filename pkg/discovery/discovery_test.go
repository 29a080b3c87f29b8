package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("# "+rel), 0644))
	}
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	var out []string
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestFindMarkdownFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"README.md",
		"docs/guide.md",
		"docs/guide.md.comments.json",
		"docs/api/ref.md",
		"notes.txt",
		"node_modules/pkg/README.md",
		"web/node_modules/dep/CHANGELOG.md",
	)

	f, err := NewFinder(root, DefaultInclude, DefaultExclude)
	require.NoError(t, err)

	files, err := f.Find(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md", "docs/api/ref.md", "docs/guide.md"}, relPaths(t, root, files))
	for _, p := range files {
		assert.True(t, filepath.IsAbs(p))
	}
}

func TestFindWithoutExclude(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.md", "node_modules/b.md")

	f, err := NewFinder(root, "", "")
	require.NoError(t, err)

	files, err := f.Find(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "node_modules/b.md"}, relPaths(t, root, files))
}

func TestFindEmptyWorkspace(t *testing.T) {
	f, err := NewFinder(t.TempDir(), DefaultInclude, DefaultExclude)
	require.NoError(t, err)

	files, err := f.Find(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindMissingRoot(t *testing.T) {
	f, err := NewFinder(filepath.Join(t.TempDir(), "missing"), DefaultInclude, DefaultExclude)
	require.NoError(t, err)

	_, err = f.Find(context.Background())
	assert.Error(t, err)
}

func TestNewFinderInvalidPattern(t *testing.T) {
	_, err := NewFinder(t.TempDir(), "**/[.md", DefaultExclude)
	assert.Error(t, err)
}
