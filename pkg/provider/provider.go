// Package provider supplies the markdown files tree to a host view. It wires
// discovery, sidecar comment counts and change notifications together and
// rebuilds the whole tree whenever anything changes.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/mdreview/pkg/discovery"
	"github.com/grovetools/mdreview/pkg/sidecar"
	"github.com/grovetools/mdreview/pkg/tree"
	"github.com/grovetools/mdreview/pkg/watch"
)

// ErrDisposed is returned when a disposed provider is asked for children.
var ErrDisposed = errors.New("provider disposed")

// Config holds provider configuration.
type Config struct {
	// Root is the workspace directory. An empty root means no workspace is
	// open and the tree is always empty.
	Root        string
	Include     string
	Exclude     string
	SidecarGlob string
	// OpenCommand is attached to file items as their activate command.
	OpenCommand string
}

// DefaultConfig returns the globs and command used by the review extension.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		Include:     discovery.DefaultInclude,
		Exclude:     discovery.DefaultExclude,
		SidecarGlob: sidecar.Glob,
		OpenCommand: DefaultOpenCommand,
	}
}

// Provider builds the markdown tree on demand and relays invalidations.
type Provider struct {
	cfg     Config
	finder  *discovery.Finder
	builder *tree.Builder
	trigger *watch.Trigger
	logger  logrus.FieldLogger

	mu       sync.Mutex
	disposed bool
}

// New creates a provider subscribed to markdown and sidecar changes on sub.
func New(cfg Config, sub watch.Subscriber, comments tree.CommentCounter, logger logrus.FieldLogger) (*Provider, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if cfg.Include == "" {
		cfg.Include = discovery.DefaultInclude
	}
	if cfg.SidecarGlob == "" {
		cfg.SidecarGlob = sidecar.Glob
	}
	if cfg.OpenCommand == "" {
		cfg.OpenCommand = DefaultOpenCommand
	}

	p := &Provider{cfg: cfg, logger: logger}

	if cfg.Root != "" {
		finder, err := discovery.NewFinder(cfg.Root, cfg.Include, cfg.Exclude)
		if err != nil {
			return nil, fmt.Errorf("create finder: %w", err)
		}
		p.finder = finder
		p.builder = tree.NewBuilder(finder.Root, comments, logger)
	}

	trigger, err := watch.NewTrigger(sub, logger, cfg.Include, cfg.SidecarGlob)
	if err != nil {
		return nil, fmt.Errorf("watch workspace: %w", err)
	}
	p.trigger = trigger
	return p, nil
}

// Config returns the effective configuration.
func (p *Provider) Config() Config {
	return p.cfg
}

// OnDidChange registers fn to run whenever the tree must be rebuilt.
func (p *Provider) OnDidChange(fn func()) watch.Subscription {
	return p.trigger.OnChanged(fn)
}

// Refresh signals listeners that the tree is stale.
func (p *Provider) Refresh() {
	p.trigger.Refresh()
}

// Children returns the top-level nodes when parent is nil, the files of a
// folder node, and nothing for a file node.
func (p *Provider) Children(ctx context.Context, parent tree.Node) ([]tree.Node, error) {
	p.mu.Lock()
	disposed := p.disposed
	p.mu.Unlock()
	if disposed {
		return nil, ErrDisposed
	}

	switch n := parent.(type) {
	case nil:
		return p.roots(ctx)
	case *tree.FolderEntry:
		out := make([]tree.Node, 0, len(n.Children))
		for _, c := range n.Children {
			out = append(out, c)
		}
		return out, nil
	default:
		return []tree.Node{}, nil
	}
}

func (p *Provider) roots(ctx context.Context) ([]tree.Node, error) {
	if p.finder == nil {
		return []tree.Node{}, nil
	}

	files, err := p.finder.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("find markdown files: %w", err)
	}
	if len(files) == 0 {
		return []tree.Node{}, nil
	}

	nodes, err := p.builder.Build(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	p.logger.WithFields(logrus.Fields{
		"files": len(files),
		"nodes": len(nodes),
	}).Debug("tree rebuilt")
	return nodes, nil
}

// Dispose detaches all subscriptions and releases the change signal.
func (p *Provider) Dispose() error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	p.mu.Unlock()
	return p.trigger.Dispose()
}
