package main

import (
	"github.com/aretw0/botflow/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP session server",
	Long:  `Serves the session API, a Server-Sent Events feed of flow changes and Prometheus metrics on /metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		prune, _ := cmd.Flags().GetDuration("prune-after")
		if !cmd.Flags().Changed("port") {
			port = cli.EnvOr(cli.EnvPort, port)
		}

		return cli.Serve(cmd.Context(), cli.ServeOptions{
			Options:    commonOptions(cmd),
			Port:       port,
			PruneAfter: prune,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Duration("prune-after", 0, "Drop sessions idle for longer than this (0 keeps them)")
}
