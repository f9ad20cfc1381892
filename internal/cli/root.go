package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute запускает CLI
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config/config.yaml"
	}

	var configPath string
	cmd := &cobra.Command{
		Use:           "talatrivia",
		Short:         "TalaTrivia API: trivia games, scoring and ranking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "path to YAML config")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))
	cmd.AddCommand(newSeedCmd(&configPath))
	return cmd
}
