// Package main implements the dealdesk command line interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dealdesk/internal/config"
	"dealdesk/internal/logging"
)

var (
	// Global flags
	verbose   bool
	workspace string
	cfgFile   string

	// Resolved once in the root PersistentPreRunE and shared by every command.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dealdesk",
	Short: "Settlement and valuation analytics for property acquisition",
	Long: `dealdesk analyzes commercial property acquisition positions: hearing-value
BATNA and settlement ranges for right-of-way negotiation, cost-approach
valuations, weighted comparable rankings, and lease-option pricing.

Inputs are JSON scenario records. Every run lands in the workspace history
database unless --no-store is given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version reports without touching the workspace
		if cmd.Name() == "version" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath())
		if err != nil {
			return err
		}
		if workspace != "" {
			cfg.Workspace.Root = workspace
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logOpts := logging.Options{
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.Format == "json",
		}
		if verbose {
			logOpts.Level = "debug"
		}
		if err := logging.Initialize(cfg.LogDir(), logOpts); err != nil {
			logger.Warn("file logging disabled", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// configPath resolves the config file location: explicit flag, then the
// workspace override, then the default search path.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if workspace != "" {
		return filepath.Join(workspace, "config.yaml")
	}
	return config.DefaultConfigPath()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dealdesk version",
	Run: func(cmd *cobra.Command, args []string) {
		c := config.DefaultConfig()
		fmt.Printf("%s %s\n", c.Name, c.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default .dealdesk under the current directory)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default <workspace>/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
