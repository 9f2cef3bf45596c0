package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Jembe/jembe-sub000/internal/config"
	"github.com/Jembe/jembe-sub000/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jembe",
	Short: "jembe reconciles server-rendered component trees",
	Long: `jembe keeps a document of server-rendered components in sync with the
producer: it loads pages, sends component commands and merges the returned
fragments into the live tree.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "jembe.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")
}

// setup loads the configuration and the logger shared by every command.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	asJSON, _ := cmd.Flags().GetBool("log-json")
	return cfg, logging.NewWriter(os.Stderr, level, asJSON), nil
}
