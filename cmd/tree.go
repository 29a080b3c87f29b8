package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/mdreview/cmd/config"
	"github.com/grovetools/mdreview/internal/render"
	"github.com/grovetools/mdreview/pkg/provider"
	"github.com/grovetools/mdreview/pkg/sidecar"
	"github.com/grovetools/mdreview/pkg/watch"
)

// newProvider resolves configuration and builds a provider on sub.
func newProvider(args []string, sub watch.Subscriber, logger logrus.FieldLogger) (*provider.Provider, error) {
	cfg, err := config.ProviderConfig(args)
	if err != nil {
		return nil, err
	}
	return provider.New(cfg, sub, sidecar.NewStore(), logger)
}

func NewTreeCmd(logger **logrus.Logger) *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:   "tree [dir]",
		Short: "Show markdown files grouped by folder with comment counts",
		Long: `Discover markdown files in a workspace, group them by folder and show how
many review comments each one has.

Examples:
  mdreview tree               # Current directory
  mdreview tree ~/docs        # Another workspace
  mdreview tree --json        # Display items as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}

			p, err := newProvider(args, watch.Nop, *logger)
			if err != nil {
				return err
			}
			defer p.Dispose()

			nodes, err := p.Children(cmd.Context(), nil)
			if err != nil {
				return err
			}
			items := provider.DisplayAll(nodes, p.Config().OpenCommand)

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput:
				return render.JSON(out, items)
			case yamlOutput:
				return render.YAML(out, items)
			default:
				return render.Tree(out, filepath.Base(p.Config().Root), items)
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output display items in JSON format")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output display items in YAML format")

	return cmd
}
