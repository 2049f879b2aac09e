package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/reconcile/internal/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	logLevel  string
	logFormat string
	envFile   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile broadcast schedules against vendor exports",
		Long: `Reconcile links every row of a master broadcast schedule to the
matching records of one or more vendor exports, classifies each cell and
writes the merged result as an Excel workbook.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine
			if err := godotenv.Load(opts.envFile); err != nil {
				slog.Debug("no env file loaded", "path", opts.envFile)
			}
			logging.Setup(opts.logLevel, opts.logFormat)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "environment file loaded before running")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSourcesCmd())
	return rootCmd
}
