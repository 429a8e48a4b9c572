package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/adapters/mcp"
	"github.com/aretw0/botflow/pkg/session"
)

// MCPOptions configures the mcp command.
type MCPOptions struct {
	Options
	Transport string // stdio or sse
	Port      int
	// PruneAfter drops sessions idle for longer than this. Zero keeps them forever.
	PruneAfter time.Duration
}

// ServeMCP exposes sessions as MCP tools. Logs go to Stderr since stdio owns Stdout.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	engine, closeFn, err := NewEngine(ctx, opts.Options, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	sessions := session.NewManager(session.WithLogger(logger))
	if opts.PruneAfter > 0 {
		go pruneLoop(ctx, sessions, opts.PruneAfter, logger)
	}
	srv := mcp.NewServer(engine, sessions, mcp.WithLogger(logger))

	switch opts.Transport {
	case "", "stdio":
		logger.Info("starting botflow MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("starting botflow MCP server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
