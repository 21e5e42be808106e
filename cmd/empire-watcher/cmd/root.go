// Package cmd implements the empire-watcher CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/empire-watcher/internal/api/client"
	"github.com/donaldgifford/empire-watcher/internal/config"
	"github.com/donaldgifford/empire-watcher/pkg/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "empire-watcher",
		Short: "Watch the CSGOEmpire marketplace for matching items",
		Long: "empire-watcher polls the CSGOEmpire catalog and listens to its live trade\n" +
			"stream for items that match your watch rules, and posts a Discord\n" +
			"notification for each match, editing it in place when the item changes.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().
		String("env-file", ".env", "dotenv file loaded before the config is read")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	for _, name := range []string{"debug", "env-file", "server", "output"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(itemsCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	viper.SetEnvPrefix("EW")
	viper.AutomaticEnv()

	if err := config.LoadEnvFiles(viper.GetString("env-file")); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
}

// loadConfig reads the YAML config named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(
		cfg.Logging.Level,
		cfg.Logging.Format,
		logger.WithDebug(viper.GetBool("debug")),
		logger.WithService("empire-watcher"),
	)
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"),
		apiclient.WithUserAgent("empire-watcher/"+Version))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
