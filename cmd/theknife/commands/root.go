package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/IlSeki/TheKnife-sub000/pkg/config"
	"github.com/IlSeki/TheKnife-sub000/pkg/logger"
)

var (
	// Global flags
	configDir   string
	environment string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "theknife",
	Short: "Maintenance tooling for the TheKnife flat-file data layer",
	Long: `theknife inspects and maintains the flat-file backing stores of the
TheKnife application: restaurants, ownership, reviews and favorites.

It operates on the data layer only; the interactive application is a
separate program.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "appconfig", "Directory holding <env>.yaml config files")
	rootCmd.PersistentFlags().StringVar(&environment, "env", "local", "Configuration environment to load")
}

// loadConfig loads the configuration named by the global flags and applies
// the logging settings.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(configDir, environment)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.App.Environment, cfg.App.LogLevel)
	return cfg, nil
}
