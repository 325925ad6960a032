package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/cinelens/internal/config"
	"github.com/HerbHall/cinelens/internal/version"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "cinelens",
		Short: "Cinema lens catalog, compatibility checker and project library",
		Long: `cinelens serves a catalog of cinema lenses, cameras and rental houses,
checks whether a lens covers a camera's recording formats, and keeps
favorites, a comparison set and projects in a local SQLite database.

Run without a subcommand to start the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file (default ./cinelens.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newLensesCmd(opts),
		newCompatCmd(opts),
		newBackupCmd(opts),
		newRestoreCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// loadSettings reads and validates the configuration.
func loadSettings(opts *rootOptions) (*config.Settings, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	return cfg.Settings()
}

// newLogger builds a production logger, or a development logger at debug.
func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
