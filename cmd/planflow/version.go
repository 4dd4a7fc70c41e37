package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/planflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of planflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "planflow version %s\n", planflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
