package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/empire-watcher/internal/config"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: "Writes a starter config to the --config path. Secrets are left as\n" +
			"${API_KEY} and ${DISCORD_WEBHOOK} references to be supplied through the\n" +
			"environment or a .env file. An existing file is never overwritten.",
		Example: `  # Create config.yaml in the current directory
  empire-watcher init

  # Create it somewhere else
  empire-watcher init --config /etc/empire-watcher/config.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Write(cfgFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgFile)
			return nil
		},
	}
}
