package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/facet/pkg/persistence/middleware"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage persistent sessions",
		Long:  `List, inspect, and remove session records in the configured store.`,
	}
	cmd.AddCommand(newSessionLsCmd(), newSessionInspectCmd(), newSessionRmCmd())
	return cmd
}

func newSessionLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f, err := newFacet(cfg, logger)
			if err != nil {
				return err
			}
			defer f.Close()

			sessions, err := f.Manager().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No active sessions found.")
				return nil
			}
			fmt.Fprintln(out, "Active Sessions:")
			for _, s := range sessions {
				fmt.Fprintln(out, "- "+s)
			}
			return nil
		},
	}
}

func newSessionInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <session-id>",
		Short: "Print a session record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]
			patterns, _ := cmd.Flags().GetStringSlice("redact")

			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f, err := newFacet(cfg, logger)
			if err != nil {
				return err
			}
			defer f.Close()

			var redactor *middleware.Redactor
			if len(patterns) > 0 {
				if redactor, err = middleware.NewRedactor(patterns); err != nil {
					return err
				}
			}

			// Through the Manager, so a record is never read mid-request.
			record, err := f.Manager().Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session '%s': %w", sessionID, err)
			}
			if redactor != nil {
				record = redactor.Redact(record)
			}

			data, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringSlice("redact", nil, "Mask values of keys matching these regular expressions")
	return cmd
}

func newSessionRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [session-id...]",
		Short: "Remove one or more sessions",
		Args: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			switch {
			case all && len(args) > 0:
				return errors.New("--all takes no session IDs")
			case !all && len(args) == 0:
				return errors.New("requires at least 1 session ID, or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f, err := newFacet(cfg, logger)
			if err != nil {
				return err
			}
			defer f.Close()

			mgr := f.Manager()
			ids := args
			if all, _ := cmd.Flags().GetBool("all"); all {
				if ids, err = mgr.List(cmd.Context()); err != nil {
					return fmt.Errorf("failed to list sessions: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			var failed int
			for _, sessionID := range ids {
				if err := mgr.Delete(cmd.Context(), sessionID); err != nil {
					fmt.Fprintf(out, "Error removing '%s': %v\n", sessionID, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "Removed session '%s'\n", sessionID)
			}

			if failed > 0 {
				return fmt.Errorf("failed to remove %d session(s)", failed)
			}
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "Remove every stored session")
	return cmd
}
