package cmd

import (
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show watcher state and search quota",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()

			state, err := c.GetSystemState(cmd.Context())
			if err != nil {
				return err
			}
			quota, err := c.GetQuota(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, map[string]any{"state": state, "quota": quota})
			}

			tw := newTabWriter(out)
			tw.writef("Ready:\t%v\n", state.Ready)
			tw.writef("Stream:\t%s\n", state.Stream)
			tw.writef("Rules:\t%d\n", state.Rules)
			tw.writef("Tracked Items:\t%d\n", state.TrackedItems)
			if quota.WindowLimit > 0 {
				tw.writef("Search Calls:\t%d / %d (resets %s)\n",
					quota.WindowUsed, quota.WindowLimit, quota.ResetAt.Format("15:04:05"))
			} else {
				tw.writef("Search Calls:\t%d\n", quota.WindowUsed)
			}
			return tw.finish()
		},
	}
}
