package main

import (
	"github.com/aretw0/botflow/internal/cli"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish [files...]",
	Short: "Upload flow documents to the Redis registry",
	Long:  `Publishes each YAML/JSON file under its base name. With no files, every document in --dir is published.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Publish(cmd.Context(), commonOptions(cmd), args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
