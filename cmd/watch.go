package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/mdreview/cmd/config"
	"github.com/grovetools/mdreview/internal/render"
	"github.com/grovetools/mdreview/pkg/provider"
	"github.com/grovetools/mdreview/pkg/sidecar"
	"github.com/grovetools/mdreview/pkg/watch"
)

func NewWatchCmd(logger **logrus.Logger) *cobra.Command {
	var noClear bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Show the markdown tree and redraw it whenever files or comments change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := *logger

			cfg, err := config.ProviderConfig(args)
			if err != nil {
				return err
			}

			fsw, err := watch.NewFSWatcher(cfg.Root, log)
			if err != nil {
				return err
			}
			defer fsw.Close()

			p, err := provider.New(cfg, fsw, sidecar.NewStore(), log)
			if err != nil {
				return err
			}
			defer p.Dispose()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Rebuilds coalesce: a pending redraw absorbs further signals.
			changed := make(chan struct{}, 1)
			p.OnDidChange(func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

			errCh := make(chan error, 1)
			go func() { errCh <- fsw.Run(ctx) }()

			out := cmd.OutOrStdout()
			clearScreen := !noClear && isTerminal(out)
			draw := func() {
				if err := redraw(ctx, out, p, clearScreen); err != nil {
					log.WithError(err).Error("rebuild failed")
				}
			}

			draw()
			for {
				select {
				case <-ctx.Done():
					return <-errCh
				case err := <-errCh:
					return err
				case <-changed:
					draw()
				}
			}
		},
	}

	cmd.Flags().BoolVar(&noClear, "no-clear", false, "Do not clear the screen before each redraw")

	return cmd
}

func redraw(ctx context.Context, w io.Writer, p *provider.Provider, clearScreen bool) error {
	nodes, err := p.Children(ctx, nil)
	if err != nil {
		return err
	}
	if clearScreen {
		// ANSI escape: clear screen and move cursor to top-left.
		fmt.Fprint(w, "\033[2J\033[H")
	}
	return render.Tree(w, filepath.Base(p.Config().Root), provider.DisplayAll(nodes, p.Config().OpenCommand))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
