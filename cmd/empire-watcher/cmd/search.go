package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/empire-watcher/internal/empire"
	"github.com/donaldgifford/empire-watcher/internal/engine"
	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

func searchCmd() *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "search [rule name...]",
		Short: "Run watch rules against the catalog once",
		Long: "Searches the catalog for each configured watch rule and prints the\n" +
			"items that match. Nothing is stored and no notifications are sent.\n" +
			"Pass rule names to limit the run to those rules.",
		Example: `  # Dry-run every rule in config.yaml
  empire-watcher search

  # Only one rule, including results the float/price bounds reject
  empire-watcher search "Karambit Crimson Web" --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			rules := selectRules(cfg.Rules(), args)
			if len(rules) == 0 {
				return fmt.Errorf("no watch rule named %s", strings.Join(args, ", "))
			}

			client := empire.NewSearchClient(cfg.Empire.APIKey,
				empire.WithBaseURL(cfg.Empire.BaseURL),
				empire.WithSearchRetry(cfg.Empire.MaxRetries, time.Second, 10*time.Second),
				empire.WithSearchLogger(log),
			)

			out := cmd.OutOrStdout()
			results := make([]ruleResult, len(rules))

			for i := range rules {
				rule := &rules[i]
				resp, err := client.Search(cmd.Context(), engine.SearchRequestFor(rule, cfg.Empire.PageSize))
				if err != nil {
					return fmt.Errorf("searching %q: %w", rule.Name, err)
				}

				items := empire.ToCatalogItems(resp.Items)
				if !showAll {
					items = slices.DeleteFunc(items, func(it domain.CatalogItem) bool {
						return !rule.Match(&it)
					})
				}
				results[i] = ruleResult{Rule: rule.Name, Items: items}
			}

			if jsonOutput() {
				return outputJSON(out, results)
			}

			for _, r := range results {
				fmt.Fprintf(out, "%s: %d item(s)\n", r.Rule, len(r.Items))
				if len(r.Items) == 0 {
					fmt.Fprintln(out)
					continue
				}
				if err := printItemsTable(out, r.Items); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "include results that fail the rule's float and price bounds")

	return cmd
}

// ruleResult is the search output for one rule. Results stay in rule order
// so rules sharing a name are reported separately.
type ruleResult struct {
	Rule  string               `json:"rule"`
	Items []domain.CatalogItem `json:"items"`
}

// selectRules returns the rules whose configured or effective name is in
// names, or every rule when names is empty.
func selectRules(rules []domain.WatchRule, names []string) []domain.WatchRule {
	if len(names) == 0 {
		return rules
	}
	out := make([]domain.WatchRule, 0, len(names))
	for i := range rules {
		base := strings.TrimPrefix(rules[i].Name, domain.StatTrakPrefix)
		for _, n := range names {
			if strings.EqualFold(n, rules[i].Name) || strings.EqualFold(n, base) {
				out = append(out, rules[i])
				break
			}
		}
	}
	return out
}
