package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/mdreview/cmd"
	"github.com/grovetools/mdreview/cmd/config"
)

var logger *logrus.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:          "mdreview",
		Short:        "Browse workspace markdown files and their review comments",
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		config.InitConfig()

		var err error
		logger, err = config.NewLogger()
		return err
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewTreeCmd(&logger))
	rootCmd.AddCommand(cmd.NewWatchCmd(&logger))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
