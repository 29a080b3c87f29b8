package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// defaultIgnores lists directories that are never watched. They produce a
// lot of noise and never hold workspace documents.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
}

type subscription struct {
	glob string
	fn   func(Event)
}

// FSWatcher is a Subscriber backed by fsnotify. It watches every
// non-ignored directory under its base directory, including directory trees
// created or moved in after startup, and dispatches events to subscribers
// from the goroutine running Run.
type FSWatcher struct {
	baseDir string
	fsw     *fsnotify.Watcher
	logger  logrus.FieldLogger

	mu   sync.Mutex
	next int
	subs map[int]subscription
	dirs map[string]struct{}

	started atomic.Bool
	closed  atomic.Bool
}

// NewFSWatcher registers every directory under baseDir with fsnotify.
func NewFSWatcher(baseDir string, logger logrus.FieldLogger) (*FSWatcher, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}
	// fsnotify reports resolved names.
	if resolved, err := filepath.EvalSymlinks(absBase); err == nil {
		absBase = resolved
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &FSWatcher{
		baseDir: absBase,
		fsw:     fsw,
		logger:  logger.WithField("component", "watch"),
		subs:    make(map[int]subscription),
		dirs:    make(map[string]struct{}),
	}

	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Subscribe registers fn for events whose base-relative path matches glob.
func (w *FSWatcher) Subscribe(glob string, fn func(Event)) (Subscription, error) {
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("watch: invalid pattern %q", glob)
	}

	w.mu.Lock()
	id := w.next
	w.next++
	w.subs[id] = subscription{glob: glob, fn: fn}
	w.mu.Unlock()

	return onceSubscription(func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}), nil
}

// Run processes filesystem events until ctx is done or Close is called.
// It must be called at most once.
func (w *FSWatcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				if w.closed.Load() {
					return nil
				}
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			w.handle(evt)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				if w.closed.Load() {
					return nil
				}
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			w.logger.WithError(err).Warn("fsnotify error")
		}
	}
}

// Close stops the underlying fsnotify watcher. Safe to call more than once.
func (w *FSWatcher) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	return w.fsw.Close()
}

func (w *FSWatcher) handle(evt fsnotify.Event) {
	op, ok := translateOp(evt.Op)
	if !ok {
		return
	}

	rel := w.rel(evt.Name)
	if w.isIgnored(rel) {
		return
	}

	switch op {
	case Create:
		// A directory created or moved in arrives as a single event; its
		// contents are reported file by file.
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if w.isIgnored(rel + "/") {
				return
			}
			files, _ := w.watchTree(evt.Name, false)
			for _, f := range files {
				w.dispatch(Event{Op: Create, Path: f}, false)
			}
			return
		}
	case Delete:
		// A watched directory removed or moved out takes unknown files with
		// it, so every subscriber hears about it.
		if w.forgetDir(evt.Name) {
			w.dispatch(Event{Op: Delete, Path: rel}, true)
			return
		}
	}

	w.dispatch(Event{Op: op, Path: rel}, false)
}

// dispatch delivers evt to subscribers whose glob matches its path, or to
// every subscriber when all is set.
func (w *FSWatcher) dispatch(evt Event, all bool) {
	w.mu.Lock()
	var targets []func(Event)
	for _, s := range w.subs {
		if all {
			targets = append(targets, s.fn)
			continue
		}
		if matched, err := doublestar.Match(s.glob, evt.Path); err == nil && matched {
			targets = append(targets, s.fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range targets {
		fn(evt)
	}
}

// translateOp maps an fsnotify op to a single Op. A rename is reported by
// fsnotify on the old name, so it counts as a delete; the new name arrives
// as a separate create. Chmod-only events are dropped.
func translateOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return Delete, true
	case op.Has(fsnotify.Write):
		return Change, true
	default:
		return 0, false
	}
}

// addDirectories registers every non-ignored directory under the base
// directory. Inaccessible directories are skipped.
func (w *FSWatcher) addDirectories() error {
	_, err := w.watchTree(w.baseDir, true)
	return err
}

// watchTree registers root and every non-ignored directory below it and
// returns the base-relative paths of the files it found. When strict is
// false, failures are logged and the walk carries on.
func (w *FSWatcher) watchTree(root string, strict bool) ([]string, error) {
	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			if path == root && strict {
				return walkDirErr
			}
			w.logger.WithError(walkDirErr).WithField("path", path).Warn("skipping inaccessible path")
			return nil
		}

		rel := w.rel(path)
		if !d.IsDir() {
			if !w.isIgnored(rel) {
				files = append(files, rel)
			}
			return nil
		}
		if rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			if strict {
				return fmt.Errorf("watch: add directory %q: %w", path, addErr)
			}
			w.logger.WithError(addErr).WithField("path", path).Warn("could not watch new directory")
			return filepath.SkipDir
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
	if walkErr != nil {
		return files, fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}
	return files, nil
}

// forgetDir drops path and every watched directory below it. It reports
// whether path was a watched directory.
func (w *FSWatcher) forgetDir(path string) bool {
	w.mu.Lock()
	if _, ok := w.dirs[path]; !ok {
		w.mu.Unlock()
		return false
	}
	prefix := path + string(filepath.Separator)
	var gone []string
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			gone = append(gone, dir)
			delete(w.dirs, dir)
		}
	}
	w.mu.Unlock()

	// fsnotify may already have dropped these watches.
	for _, dir := range gone {
		_ = w.fsw.Remove(dir)
	}
	return true
}

func (w *FSWatcher) rel(path string) string {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (w *FSWatcher) isIgnored(rel string) bool {
	for _, pat := range defaultIgnores {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}
