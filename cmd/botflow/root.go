package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/botflow/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "botflow",
	Short: "Botflow runs conversational flows built from blocks and steps",
	Long: `Botflow loads flow documents (YAML, JSON or Markdown front matter) and walks
users through them in the terminal, over HTTP or as MCP tools.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cli.LoadEnv()
	},
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", cli.EnvOr(cli.EnvDir, "."), "Directory containing the flow documents")
	flags.Bool("debug", false, "Log engine lifecycle events to stderr")
	flags.String("redis-addr", os.Getenv(cli.EnvRedisAddr), "Load flows from the Redis registry at this address")
	flags.String("redis-prefix", os.Getenv(cli.EnvRedisPrefix), "Key prefix of the Redis registry")
	rootCmd.SilenceErrors = true
}

// commonOptions reads the persistent flags. An explicit --dir wins over a
// positional directory argument.
func commonOptions(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	debug, _ := flags.GetBool("debug")
	addr, _ := flags.GetString("redis-addr")
	prefix, _ := flags.GetString("redis-prefix")

	// .env is loaded after flag defaults are computed.
	if !flags.Changed("dir") {
		dir = cli.EnvOr(cli.EnvDir, dir)
	}
	if !flags.Changed("redis-addr") {
		addr = cli.EnvOr(cli.EnvRedisAddr, addr)
	}
	if !flags.Changed("redis-prefix") {
		prefix = cli.EnvOr(cli.EnvRedisPrefix, prefix)
	}
	return cli.Options{Dir: dir, Debug: debug, RedisAddr: addr, RedisPrefix: prefix}
}
