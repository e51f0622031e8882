// Command garden serves the digital garden and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fengwz.me/garden/internal/config"
	"fengwz.me/garden/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "garden",
		Short: "Personal digital garden backed by a headless WordPress",
		Long: `garden renders posts, shelves and pages from a headless WordPress installation
and falls back to built-in seed content when the CMS is unreachable.

Run without a subcommand to start the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with local overrides")

	root.AddCommand(newServeCmd(opts), newSitemapCmd(opts))
	return root
}

func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	logger, err := observability.NewLogger()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("initialise logger: %w", err)
	}
	cfg, err := config.Load(config.WithEnvFile(o.envFile))
	if err != nil {
		_ = logger.Sync()
		return config.Config{}, nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, logger.Named("garden"), nil
}
