package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/planflow"
	"github.com/aretw0/planflow/internal/cli"
	"github.com/aretw0/planflow/internal/presentation/tui"
	"github.com/aretw0/planflow/pkg/observability"
)

var runCmd = &cobra.Command{
	Use:   "run [flow]",
	Short: "Walk through a flow interactively",
	Long: `Starts or resumes a session on a flow. Cards the session already implies
are answered automatically; the rest are asked on the terminal. Type "back"
to revisit the previous card and "quit" to leave; the session is saved after
every answer and can be resumed with --session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		noColor, _ := cmd.Flags().GetBool("no-color")

		var flow string
		if len(args) > 0 {
			flow = args[0]
		}
		if flow == "" && sessionID == "" {
			return errors.New("a flow name or --session is required")
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

		fd := int(os.Stdout.Fd())
		styled := !noColor && term.IsTerminal(fd)
		width := 80
		if styled {
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				width = w
			}
			tui.PrintBanner(os.Stdout, planflow.Version)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		s, err := cli.Start(ctx, manager, newLoader(cmd), cli.RunOptions{
			Flow:      flow,
			SessionID: sessionID,
			Fresh:     fresh,
			Styled:    styled,
			Width:     width,
			In:        os.Stdin,
			Out:       os.Stdout,
			Logger:    logger,
			EngineOptions: []planflow.Option{
				planflow.WithLifecycleHooks(observability.LoggingHooks(logger)),
			},
		})
		if err != nil {
			return err
		}
		fmt.Printf(">>> Session '%s' active.\n", s.ID())

		if err := s.Run(ctx); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			fmt.Printf("\n>>> Interrupted (%v). Session '%s' saved.\n", sig, s.ID())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("session", "s", "", "Session id to create or resume")
	runCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	runCmd.Flags().Bool("no-color", false, "Disable colour and markdown rendering")
}
