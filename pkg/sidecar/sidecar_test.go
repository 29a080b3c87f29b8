package sidecar

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	store := NewStore()

	f, err := store.Read(context.Background(), filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.Nil(t, f)

	count, err := store.CommentCount(context.Background(), filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReadSidecar(t *testing.T) {
	dir := t.TempDir()
	notePath := filepath.Join(dir, "a.md")
	content := `{
  "version": 1,
  "comments": [
    {"id": "c1", "line": 3, "text": "typo", "author": "reviewer"},
    {"id": "c2", "text": "needs a diagram", "resolved": true}
  ]
}`
	require.NoError(t, os.WriteFile(PathFor(notePath), []byte(content), 0644))

	store := NewStore()
	f, err := store.Read(context.Background(), notePath)
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, 1, f.Version)
	require.Len(t, f.Comments, 2)
	assert.Equal(t, "c1", f.Comments[0].ID)
	assert.Equal(t, 3, f.Comments[0].Line)
	assert.True(t, f.Comments[1].Resolved)

	count, err := store.CommentCount(context.Background(), notePath)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReadInvalidSidecar(t *testing.T) {
	dir := t.TempDir()
	notePath := filepath.Join(dir, "broken.md")
	require.NoError(t, os.WriteFile(PathFor(notePath), []byte("{not json"), 0644))

	count, err := NewStore().CommentCount(context.Background(), notePath)
	assert.Error(t, err)
	assert.Equal(t, 0, count)
}

func TestCommentCountIgnoresFieldTypes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"numeric ids", `{"comments":[{"id":1},{"id":2}]}`, 2},
		{"epoch createdAt", `{"comments":[{"id":"c1","createdAt":1700000000000}]}`, 1},
		{"string line", `{"comments":[{"id":"c1","line":"12"}]}`, 1},
		{"no comments key", `{"version":2}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notePath := filepath.Join(dir, tt.name+".md")
			require.NoError(t, os.WriteFile(PathFor(notePath), []byte(tt.content), 0644))

			count, err := NewStore().CommentCount(context.Background(), notePath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Read(ctx, "whatever.md")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "docs/a.md.comments.json", PathFor("docs/a.md"))
}
