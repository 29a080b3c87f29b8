package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateOp(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Op
		ok   bool
	}{
		{fsnotify.Create, Create, true},
		{fsnotify.Write, Change, true},
		{fsnotify.Remove, Delete, true},
		{fsnotify.Rename, Delete, true},
		{fsnotify.Create | fsnotify.Write, Create, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, ok := translateOp(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFSWatcherDeliversMatchingEvents(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0755))

	w, err := NewFSWatcher(dir, nil)
	require.NoError(t, err)

	events := make(chan Event, 16)
	_, err = w.Subscribe("**/*.md", func(evt Event) { events <- evt })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "ignored.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "a.md"), []byte("# a"), 0644))

	select {
	case evt := <-events:
		assert.Equal(t, "docs/a.md", evt.Path)
		assert.Equal(t, Create, evt.Op)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for create event")
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFSWatcherRunTwice(t *testing.T) {
	w, err := NewFSWatcher(t.TempDir(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.Error(t, w.Run(ctx))
}

func TestFSWatcherInvalidPattern(t *testing.T) {
	w, err := NewFSWatcher(t.TempDir(), nil)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Subscribe("[", func(Event) {})
	assert.Error(t, err)
}

func TestFSWatcherIgnoresDependencyDirs(t *testing.T) {
	w, err := NewFSWatcher(t.TempDir(), nil)
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.isIgnored("node_modules/pkg/README.md"))
	assert.True(t, w.isIgnored("web/.git/HEAD"))
	assert.False(t, w.isIgnored("docs/a.md"))
}

// startWatcher runs a watcher on root that forwards "**/*.md" events.
func startWatcher(t *testing.T, root string) <-chan Event {
	t.Helper()
	w, err := NewFSWatcher(root, nil)
	require.NoError(t, err)

	events := make(chan Event, 64)
	_, err = w.Subscribe("**/*.md", func(evt Event) { events <- evt })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return events
}

// waitForEvent drains events until want arrives.
func waitForEvent(t *testing.T, events <-chan Event, want Event) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case evt := <-events:
			if evt == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s %s", want.Op, want.Path)
		}
	}
}

func TestFSWatcherDirectoryMovedIn(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "guides", "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "guides", "sub", "c.md"), []byte("# c"), 0644))

	events := startWatcher(t, root)

	require.NoError(t, os.Rename(filepath.Join(outside, "guides"), filepath.Join(root, "guides")))
	waitForEvent(t, events, Event{Op: Create, Path: "guides/sub/c.md"})

	// The nested directory that came with the move is watched too.
	require.NoError(t, os.WriteFile(filepath.Join(root, "guides", "sub", "d.md"), []byte("# d"), 0644))
	waitForEvent(t, events, Event{Op: Create, Path: "guides/sub/d.md"})
}

func TestFSWatcherDirectoryMovedOut(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "a.md"), []byte("# a"), 0644))

	events := startWatcher(t, root)

	require.NoError(t, os.Rename(filepath.Join(root, "docs"), filepath.Join(outside, "docs")))
	waitForEvent(t, events, Event{Op: Delete, Path: "docs"})
}

func TestFSWatcherNestedMkdir(t *testing.T) {
	root := t.TempDir()
	events := startWatcher(t, root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "x.md"), []byte("# x"), 0644))
	waitForEvent(t, events, Event{Op: Create, Path: "a/b/x.md"})

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "y.md"), []byte("# y"), 0644))
	waitForEvent(t, events, Event{Op: Create, Path: "a/b/y.md"})
}
