package cmd

import (
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show watch rules",
		Long: "Shows the processed watch rules, including StatTrak prefixes. Rules\n" +
			"come from the running server unless --local reads them from the config.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if local {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				rules := cfg.Rules()
				if jsonOutput() {
					return outputJSON(cmd.OutOrStdout(), rules)
				}
				return printRulesTable(cmd.OutOrStdout(), rules)
			}

			rules, err := newClient().ListRules(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), rules)
			}
			return printRulesTable(cmd.OutOrStdout(), rules)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "read rules from the config file instead of the server")

	return cmd
}
