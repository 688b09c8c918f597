package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/facet/internal/config"
	"github.com/aretw0/facet/internal/logging"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "facet",
		Short:         "Facet is a namespaced session facade for HTTP servers",
		Long:          `Facet serves a demo session API and manages the session records it persists.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides config")

	cmd.AddCommand(newServeCmd(), newSessionCmd(), newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration and logger for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(level), nil
}
