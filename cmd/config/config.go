package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grovetools/mdreview/pkg/discovery"
	"github.com/grovetools/mdreview/pkg/provider"
	"github.com/grovetools/mdreview/pkg/sidecar"
)

var (
	cfgFile      string
	RootOverride string
	LogLevel     string
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "mdreview")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MDREVIEW")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("root", "")
	viper.SetDefault("include", discovery.DefaultInclude)
	viper.SetDefault("exclude", discovery.DefaultExclude)
	viper.SetDefault("sidecar_glob", sidecar.Glob)
	viper.SetDefault("open_command", provider.DefaultOpenCommand)
	viper.SetDefault("log_level", "warn")

	// A missing config file is normal.
	_ = viper.ReadInConfig()
}

// ProviderConfig resolves the provider configuration. The workspace root is
// taken from args, then --root, then the config file, then the working
// directory.
func ProviderConfig(args []string) (provider.Config, error) {
	root := viper.GetString("root")
	if RootOverride != "" {
		root = RootOverride
	}
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return provider.Config{}, fmt.Errorf("determine working directory: %w", err)
		}
		root = wd
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return provider.Config{}, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return provider.Config{}, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return provider.Config{}, fmt.Errorf("workspace root %s is not a directory", root)
	}

	return provider.Config{
		Root:        root,
		Include:     viper.GetString("include"),
		Exclude:     viper.GetString("exclude"),
		SidecarGlob: viper.GetString("sidecar_glob"),
		OpenCommand: viper.GetString("open_command"),
	}, nil
}

// NewLogger builds the stderr logger used by every command.
func NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level := viper.GetString("log_level")
	if LogLevel != "" {
		level = LogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mdreview/config.yaml)")
	cmd.PersistentFlags().StringVarP(&RootOverride, "root", "W", "", "Workspace root to scan (default is the current directory)")
	cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}
