package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"spirare/internal/config"
	"spirare/internal/daemonrun"
)

// configEnv names the config file when --config is not given.
const configEnv = "SPIRARE_CONFIG"

type daemonFlags struct {
	configPath  string
	logLevel    string
	development bool
	noSeed      bool
}

func newDaemonCommand() *cobra.Command {
	var flags daemonFlags

	cmd := &cobra.Command{
		Use:           "spirared",
		Short:         "Spirare meditation HTTP service",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath, os.Getenv)
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    flags.logLevel,
				Development: flags.development,
				Version:     version,
				SkipSeed:    flags.noSeed,
			})
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (defaults to $"+configEnv+")")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Override logging.level")
	cmd.Flags().BoolVar(&flags.development, "development", false, "Include source locations in log output")
	cmd.Flags().BoolVar(&flags.noSeed, "no-seed", false, "Do not seed an empty content store")
	return cmd
}

func loadConfig(path string, getenv func(string) string) (*config.Config, error) {
	path = strings.TrimSpace(path)
	if path == "" && getenv != nil {
		path = strings.TrimSpace(getenv(configEnv))
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
