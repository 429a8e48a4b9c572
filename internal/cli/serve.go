package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/logging"
	httpAdapter "github.com/aretw0/botflow/pkg/adapters/http"
	"github.com/aretw0/botflow/pkg/observability"
	"github.com/aretw0/botflow/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	Options
	Port string
	// PruneAfter drops sessions idle for longer than this. Zero keeps them forever.
	PruneAfter time.Duration
}

// NewServeHandler combines the session API with a /metrics endpoint for reg.
func NewServeHandler(engine *botflow.Engine, sessions *session.Manager, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/", httpAdapter.NewHandler(engine, sessions, httpAdapter.WithLogger(logger)))
	return r
}

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}

	engine, closeFn, err := NewEngine(ctx, opts.Options, logger, metrics.Hooks())
	if err != nil {
		return err
	}
	defer closeFn()

	sessions := session.NewManager(session.WithLogger(logger))
	if opts.PruneAfter > 0 {
		go pruneLoop(ctx, sessions, opts.PruneAfter, logger)
	}

	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           NewServeHandler(engine, sessions, reg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("botflow server listening", "address", srv.Addr, "repo", engine.Name, "redis", opts.RedisAddr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		return nil
	}
}

func pruneLoop(ctx context.Context, sessions *session.Manager, olderThan time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(olderThan)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.Prune(ctx, olderThan); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("session prune failed", "err", err)
			}
		}
	}
}
