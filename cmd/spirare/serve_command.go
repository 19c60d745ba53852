package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spirare/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var development bool
	var noSeed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API in the foreground",
		Long: "Run the meditation HTTP API until interrupted. An empty content store is\n" +
			"seeded from content.seed_path or the embedded default unless --no-seed is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
				Version:     version,
				SkipSeed:    noSeed,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&development, "development", false, "Include source locations in log output")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "Do not seed an empty content store")
	return cmd
}
