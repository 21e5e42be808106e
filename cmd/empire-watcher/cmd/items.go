package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/empire-watcher/internal/api/client"
)

func itemsCmd() *cobra.Command {
	itemsRoot := &cobra.Command{
		Use:   "items",
		Short: "Query tracked items",
		Long: "Query items the running watcher has matched, with their last known\n" +
			"state and whether a notification has been posted.",
	}

	itemsRoot.AddCommand(
		itemsListCmd(),
		itemsGetCmd(),
	)

	return itemsRoot
}

func itemsListCmd() *cobra.Command {
	var (
		name    string
		limit   int
		offset  int
		orderBy string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked items",
		Example: `  # Most expensive tracked karambits
  empire-watcher items list --name karambit --order-by price`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().ListItems(cmd.Context(), &apiclient.ListItemsParams{
				Name:    name,
				Limit:   limit,
				Offset:  offset,
				OrderBy: orderBy,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, resp)
			}

			if len(resp.Items) == 0 {
				fmt.Fprintln(out, "No tracked items.")
				return nil
			}

			fmt.Fprintf(out, "Showing %d of %d items\n\n", len(resp.Items), resp.Total)
			return printTrackedTable(out, resp.Items)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "market name substring filter")
	cmd.Flags().IntVar(&limit, "limit", 50, "number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "result offset")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort order (id, price, updated_at)")

	return cmd
}

func itemsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a tracked item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", args[0], err)
			}

			item, err := newClient().GetItem(cmd.Context(), id)
			if apiclient.IsNotFound(err) {
				return fmt.Errorf("item %d is not tracked by the server", id)
			}
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), item)
			}
			return printTrackedDetail(cmd.OutOrStdout(), item)
		},
	}
}
