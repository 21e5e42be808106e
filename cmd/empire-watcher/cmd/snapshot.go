package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Trigger a snapshot cycle on the server",
		Long:  "Asks the running watcher to search every rule now and waits for the cycle to finish.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().TriggerSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, resp)
			}

			fmt.Fprintln(out, "Snapshot completed.")
			if s := resp.Summary; s != nil {
				tw := newTabWriter(out)
				tw.writef("Rules:\t%d (%d failed)\n", s.Rules, s.Failed)
				tw.writef("Fetched:\t%d\n", s.Fetched)
				tw.writef("Matched:\t%d\n", s.Matched)
				tw.writef("New:\t%d\n", s.New)
				tw.writef("Updated:\t%d\n", s.Updated)
				tw.writef("Unchanged:\t%d\n", s.Unchanged)
				return tw.finish()
			}
			return nil
		},
	}
}
