package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/planflow/pkg/persistence/middleware"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions held by the selected --store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		manager, closeStore, err := newManager(cmd, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		ids, err := manager.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No active sessions found.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tFLOW\tANSWERS\tUPDATED")
		for _, id := range ids {
			snap, err := manager.Store().Load(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(tw, "%s\t?\t?\t%v\n", id, err)
				continue
			}
			answers := "-"
			if snap.Sealed == "" {
				answers = fmt.Sprint(snap.Breadcrumbs.Len())
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, snap.Flow, answers, snap.UpdatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the stored snapshot of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		redact, _ := cmd.Flags().GetBool("redact")
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		manager, closeStore, err := newManager(cmd, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		snap, err := manager.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load session '%s': %w", args[0], err)
		}
		if redact {
			snap = middleware.MaskSnapshot(snap, middleware.DefaultPIIPatterns)
		}

		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id...]",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return errors.New("session ids or --all are required")
		}
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		manager, closeStore, err := newManager(cmd, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		ids := args
		if all {
			if ids, err = manager.List(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		var errs []error
		for _, id := range ids {
			if err := manager.Delete(cmd.Context(), id); err != nil {
				errs = append(errs, fmt.Errorf("failed to remove '%s': %w", id, err))
				continue
			}
			fmt.Fprintf(out, "Removed session '%s'\n", id)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().Bool("redact", false, "Mask contact details and addresses")
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
}
