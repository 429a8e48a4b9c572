package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/adapters/redis"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/observability"
)

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout flow UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// NewEngine initializes an engine with standard CLI conventions: flows come from
// the Redis registry when an address is configured, otherwise from the directory.
// The returned close function releases the backend.
func NewEngine(ctx context.Context, opts Options, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*botflow.Engine, func() error, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}

	engineOpts := []botflow.Option{
		botflow.WithLogger(logger),
		botflow.WithLifecycleHooks(domain.MergeHooks(hooks...)),
	}

	closeFn := func() error { return nil }
	if opts.RedisAddr != "" {
		reg, err := newRegistry(ctx, opts, logger)
		if err != nil {
			return nil, nil, err
		}
		engineOpts = append(engineOpts, botflow.WithLoader(reg))
		closeFn = reg.Close
	}

	engine, err := botflow.New(opts.Dir, engineOpts...)
	if err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, closeFn, nil
}

func newRegistry(ctx context.Context, opts Options, logger *slog.Logger) (*redis.Registry, error) {
	regOpts := []redis.Option{redis.WithLogger(logger)}
	if opts.RedisPrefix != "" {
		regOpts = append(regOpts, redis.WithPrefix(opts.RedisPrefix))
	}
	reg := redis.New(opts.RedisAddr, regOpts...)
	if err := reg.Ping(ctx); err != nil {
		_ = reg.Close()
		return nil, fmt.Errorf("redis at %s unreachable: %w", opts.RedisAddr, err)
	}
	return reg, nil
}

// determineEntryFlow picks the flow to run when none is named: the only flow,
// else the first of main, start, index or the directory name that exists.
func determineEntryFlow(ctx context.Context, engine *botflow.Engine, dir string) (string, error) {
	flows, err := engine.Flows(ctx)
	if err != nil {
		return "", err
	}
	switch len(flows) {
	case 0:
		return "", fmt.Errorf("%w: no flows available", domain.ErrFlowNotFound)
	case 1:
		return flows[0], nil
	}

	candidates := []string{"main", "start", "index"}
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			candidates = append(candidates, filepath.Base(abs))
		}
	}
	for _, c := range candidates {
		if slices.Contains(flows, c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("several flows available, name one of: %v", flows)
}
