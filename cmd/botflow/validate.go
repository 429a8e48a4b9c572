package main

import (
	"github.com/aretw0/botflow/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flows...]",
	Short: "Check flows for consistency",
	Long:  `Reports dangling edges, undeclared variables, broken links and unreachable blocks. Warnings do not fail the command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(cmd.Context(), commonOptions(cmd), args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
