// Package cli implements the gridpilot command surface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/gridpilot/gridpilot/internal/api"
	"github.com/gridpilot/gridpilot/internal/config"
	"github.com/gridpilot/gridpilot/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagBackend string
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gridpilot",
	Short: "Terminal control surface for a remote step-wise Sudoku solver",
	Long: `Gridpilot drives a remote inference backend that solves Sudoku
puzzles one model step at a time. It initializes a solving session,
steps it manually or on an automatic cadence, and renders the evolving
grid in the terminal.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("gridpilot version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.config/gridpilot/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	if flagVerbose {
		logging.SetLevel(logging.LevelDebug)
	}

	path := flagConfig
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.DefaultConfig(), err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Backend.URL = flagBackend
		if err := config.Validate(cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// newClient builds the backend client from resolved config.
func newClient(cfg config.Config) *api.Client {
	return api.NewClient(cfg.Backend.URL)
}
