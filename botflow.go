package botflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/botflow/internal/compiler"
	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/internal/runtime"
	loamAdapter "github.com/aretw0/botflow/pkg/adapters/loam"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
	"github.com/aretw0/loam"
	"github.com/google/uuid"
)

// Session is one live conversation. It is not safe for concurrent use; see pkg/session.
type Session = runtime.Session

// Engine is the high-level entry point for the library.
// It wraps the internal runtime, and owns the flow loader and session ID generation.
type Engine struct {
	runtime *runtime.Engine
	loader  ports.FlowLoader
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	newID   func() string
	Name    string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom FlowLoader, bypassing the default Loam initialization.
func WithLoader(l ports.FlowLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIDGenerator overrides how session IDs are minted (UUIDv4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// New initializes a new Engine.
// By default, it reads flows from a Loam repository at the given path.
// If WithLoader option is provided, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom loader is provided")
		}

		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		// Strict keeps numbers consistent across JSON and YAML documents.
		// The engine never writes flows, so the repository is opened read-only.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		eng.loader = loamAdapter.New(loam.NewTypedRepository[compiler.FlowDocument](repo))
	} else if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("repo", eng.Name)
	}
	if eng.newID == nil {
		eng.newID = uuid.NewString
	}

	eng.runtime = runtime.NewEngine(
		eng.loader,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// NewSession loads a flow and creates a session for it without displaying anything.
func (e *Engine) NewSession(ctx context.Context, flowID string) (*Session, error) {
	g, err := e.loader.GetFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}
	return runtime.NewSession(e.newID(), g), nil
}

// Start creates a session for flowID and enters it.
func (e *Engine) Start(ctx context.Context, flowID string, opts domain.StartOptions) (*Session, domain.Outcome, error) {
	sess, err := e.NewSession(ctx, flowID)
	if err != nil {
		return nil, "", err
	}
	outcome, err := e.runtime.Start(ctx, sess, opts)
	if err != nil {
		return nil, "", err
	}
	return sess, outcome, nil
}

// Enter starts an existing session created with NewSession.
func (e *Engine) Enter(ctx context.Context, sess *Session, opts domain.StartOptions) (domain.Outcome, error) {
	return e.runtime.Start(ctx, sess, opts)
}

// AdvanceBlock displays a block of the active flow directly.
func (e *Engine) AdvanceBlock(ctx context.Context, sess *Session, blockID string) (domain.Outcome, error) {
	return e.runtime.AdvanceBlock(ctx, sess, blockID)
}

// AdvanceEdge follows an edge of the active flow.
func (e *Engine) AdvanceEdge(ctx context.Context, sess *Session, edgeID string) (domain.Outcome, error) {
	return e.runtime.AdvanceEdge(ctx, sess, edgeID)
}

// CompleteStep finishes a step of the last displayed block and follows its edge.
func (e *Engine) CompleteStep(ctx context.Context, sess *Session, stepID string) (domain.Outcome, error) {
	return e.runtime.CompleteStep(ctx, sess, stepID)
}

// Link hands control to another flow, resuming through returnEdgeID afterwards.
func (e *Engine) Link(ctx context.Context, sess *Session, target domain.LinkTarget, returnEdgeID string) (domain.Outcome, error) {
	return e.runtime.Link(ctx, sess, target, returnEdgeID)
}

// Bind sets a session variable by ID or case-insensitive name.
func (e *Engine) Bind(ctx context.Context, sess *Session, nameOrID, value string) error {
	return e.runtime.Bind(ctx, sess, nameOrID, value)
}

// Flows lists the available flow IDs.
func (e *Engine) Flows(ctx context.Context) ([]string, error) {
	return e.loader.ListFlows(ctx)
}

// Flow returns the definition of one flow for inspection or export.
func (e *Engine) Flow(ctx context.Context, flowID string) (*domain.FlowGraph, error) {
	return e.loader.GetFlow(ctx, flowID)
}

// Watch returns a channel that signals when a flow changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying FlowLoader used by the engine.
func (e *Engine) Loader() ports.FlowLoader {
	return e.loader
}
