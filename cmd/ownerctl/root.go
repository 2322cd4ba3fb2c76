package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"ownerscope/internal/app"
	"ownerscope/internal/config"
	"ownerscope/internal/logging"
)

type rootOptions struct {
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ownerctl",
		Short:         "Resolve property owners and inspect data source health",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(
		newClassifyCommand(),
		newResolveCommand(opts),
		newProvidersCommand(opts),
		newMigrateCommand(opts),
		newRegistryCommand(opts),
	)
	return root
}

var errNeedsDatabase = errors.New("DATABASE_URL is required for this command")

// loadApp builds the application from the environment. With requireDB set a
// missing DATABASE_URL is an error rather than a fallback to memory.
func loadApp(cmd *cobra.Command, opts *rootOptions, requireDB bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrNoDatabase) || requireDB {
			if errors.Is(err, config.ErrNoDatabase) {
				return nil, errNeedsDatabase
			}
			return nil, err
		}
	}
	log := logging.New(logging.Config{Level: opts.logLevel, Format: "console", Output: os.Stderr})
	return app.Build(cmd.Context(), cfg, log)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
