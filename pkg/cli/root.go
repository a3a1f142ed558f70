// Package cli holds the cancelflow commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"cancelflow/config"
)

// RootOptions is shared by every command. Config is loaded before any
// command runs; flags override it.
type RootOptions struct {
	Config   config.AppConfig
	DBPath   string
	LogLevel string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "cancelflow",
		Short:         "Subscription cancellation flow",
		Long:          "Serves the cancellation flow API and drives the cancellation wizard against it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Config = config.Load()
			if opts.DBPath != "" {
				opts.Config.DBPath = opts.DBPath
			}
			if opts.LogLevel != "" {
				opts.Config.LogLevel = opts.LogLevel
			}
			opts.Config.SetupLogging(os.Stderr)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	return cmd
}
