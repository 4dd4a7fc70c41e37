package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/planflow/internal/validator"
)

var errInvalid = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate [flow...]",
	Short: "Check flows for consistency",
	Long: `Reports edges that point at missing nodes, nodes that cannot be reached
from the root, options that are not answers and other malformed nodes.
Without arguments every flow in --dir is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := newLoader(cmd)
		names := args
		if len(names) == 0 {
			var err error
			if names, err = loader.List(cmd.Context()); err != nil {
				return err
			}
			if len(names) == 0 {
				return errors.New("no flows found")
			}
		}

		out := cmd.OutOrStdout()
		failed := false
		for _, name := range names {
			g, err := loader.Load(cmd.Context(), name)
			if err == nil {
				err = validator.ValidateGraph(g)
			}
			if err != nil {
				failed = true
				fmt.Fprintf(out, "%s: invalid\n", name)
				for _, e := range unwrapJoined(err) {
					fmt.Fprintf(out, "  - %v\n", e)
				}
				continue
			}
			fmt.Fprintf(out, "%s: valid ✅\n", name)
		}
		if failed {
			return errInvalid
		}
		return nil
	},
}

func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
