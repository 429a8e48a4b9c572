package main

import (
	"github.com/aretw0/botflow/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flow]",
	Short: "Run a flow as a terminal conversation",
	Long: `Starts a session on the named flow, or on the entry flow of the directory
(the only flow, else main, start, index or the directory name).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		jsonMode, _ := cmd.Flags().GetBool("json")
		vars, _ := cmd.Flags().GetStringToString("var")

		opts := cli.RunOptions{
			Options:    commonOptions(cmd),
			StartBlock: start,
			JSON:       jsonMode,
			Variables:  vars,
			In:         cmd.InOrStdin(),
			Out:        cmd.OutOrStdout(),
		}
		if len(args) > 0 {
			opts.FlowID = args[0]
		}
		return cli.Run(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("start", "", "Enter this block directly instead of following the first edge")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().StringToString("var", nil, "Predefined variable, as name=value (repeatable)")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Args = runCmd.Args
}
