package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/planflow"
	"github.com/aretw0/planflow/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <flow>",
	Short: "Export the flow graph as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the flow in canonical order.
With --session, answered cards and the current card are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		loader := newLoader(cmd)
		sessionID, _ := cmd.Flags().GetString("session")

		g, err := loader.Load(ctx, args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if sessionID != "" {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			manager, closeStore, err := newManager(cmd, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			snap, err := manager.Load(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", sessionID, err)
			}
			if snap.Flow != args[0] {
				return fmt.Errorf("session %s belongs to flow %q", sessionID, snap.Flow)
			}
			eng, err := planflow.NewFromGraph(g, planflow.WithSessionID(sessionID), planflow.WithLogger(logger))
			if err != nil {
				return err
			}
			eng.ResumeSession(snap)
			overlay = graph.OverlayFrom(eng.Breadcrumbs(), eng.CurrentCard())
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the progress of a session")
}
