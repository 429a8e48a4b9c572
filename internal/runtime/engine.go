package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

// Engine is the traversal state machine.
// It keeps no per-conversation state: everything it mutates lives in the Session.
type Engine struct {
	loader ports.FlowLoader
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers the notification sink.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new engine. The loader is only consulted by Link and may be nil
// for engines that never splice flows together.
func NewEngine(loader ports.FlowLoader, opts ...EngineOption) *Engine {
	e := &Engine{
		loader: loader,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start injects predefined variables and displays the first block.
// Without a start block the flow begins by following the outgoing edge of its first step.
func (e *Engine) Start(ctx context.Context, sess *Session, opts domain.StartOptions) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sess.started {
		return "", fmt.Errorf("%w: %s", domain.ErrSessionStarted, sess.id)
	}
	sess.started = true

	bound := sess.vars.InjectPredefined(opts.Predefined)
	if len(opts.Predefined) > 0 {
		e.logger.Debug("predefined variables injected",
			"session_id", sess.id,
			"provided", len(opts.Predefined),
			"bound", len(bound),
		)
	}
	e.emitVariablesInjected(ctx, sess, bound)

	if opts.StartBlockID != "" {
		return e.AdvanceBlock(ctx, sess, opts.StartBlockID)
	}
	if len(sess.active.Blocks) == 0 {
		return e.complete(ctx, sess, domain.ReasonEmptyGraph), nil
	}
	return e.AdvanceEdge(ctx, sess, sess.active.FirstEdgeID())
}

// AdvanceBlock displays a block of the active graph directly.
// An unknown block is a caller error: nothing changes and nothing is emitted.
func (e *Engine) AdvanceBlock(ctx context.Context, sess *Session, blockID string) (domain.Outcome, error) {
	if err := e.checkAdvance(ctx, sess); err != nil {
		return "", err
	}

	block, ok := sess.active.Block(blockID)
	if !ok {
		e.logger.Warn("direct entry ignored: block not found",
			"session_id", sess.id,
			"graph", sess.active.ID,
			"block_id", blockID,
		)
		return domain.OutcomeIgnored, nil
	}

	return e.display(ctx, sess, domain.SyntheticEdge(blockID), block, 0), nil
}

// AdvanceEdge follows an edge of the active graph.
// When the edge is unknown, queued continuations are drained until one resolves;
// an empty queue or a dangling edge completes the session.
func (e *Engine) AdvanceEdge(ctx context.Context, sess *Session, edgeID string) (domain.Outcome, error) {
	if err := e.checkAdvance(ctx, sess); err != nil {
		return "", err
	}
	return e.followEdge(ctx, sess, edgeID)
}

func (e *Engine) followEdge(ctx context.Context, sess *Session, edgeID string) (domain.Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		edge, ok := sess.active.Edge(edgeID)
		if !ok {
			next, queued := sess.queue.DequeueNext()
			if !queued {
				return e.complete(ctx, sess, domain.ReasonExhausted), nil
			}

			from := sess.active.ID
			if next.Graph != nil {
				sess.active = next.Graph
			}
			e.logger.Debug("resuming queued continuation",
				"session_id", sess.id,
				"edge_id", next.EdgeID,
				"from_graph", from,
				"to_graph", sess.active.ID,
				"pending", sess.queue.Len(),
			)
			e.emitContinuation(ctx, sess, next.EdgeID, from)
			edgeID = next.EdgeID
			continue
		}

		block, ok := sess.active.Block(edge.To.BlockID)
		if !ok {
			e.logger.Debug("edge target block not found",
				"session_id", sess.id,
				"edge_id", edge.ID,
				"block_id", edge.To.BlockID,
			)
			return e.complete(ctx, sess, domain.ReasonDanglingEdge), nil
		}

		startIndex := 0
		if edge.To.StepID != "" {
			if idx, found := block.StepIndex(edge.To.StepID); found {
				startIndex = idx
			} else {
				e.logger.Debug("edge target step not found, starting at first step",
					"session_id", sess.id,
					"edge_id", edge.ID,
					"step_id", edge.To.StepID,
				)
			}
		}

		return e.display(ctx, sess, *edge, block, startIndex), nil
	}
}

// CompleteStep reports that a step of the last displayed block finished and
// follows whatever edge that step leads to.
func (e *Engine) CompleteStep(ctx context.Context, sess *Session, stepID string) (domain.Outcome, error) {
	if err := e.checkAdvance(ctx, sess); err != nil {
		return "", err
	}

	last, ok := sess.history.Last()
	if !ok {
		return "", fmt.Errorf("%w: %s (nothing displayed yet)", domain.ErrStepNotFound, stepID)
	}
	step, ok := last.Block.Step(stepID)
	if !ok {
		return "", fmt.Errorf("%w: %s in block %s", domain.ErrStepNotFound, stepID, last.Block.ID)
	}

	if step.Type == domain.StepTypeLink && step.Link != nil {
		return e.link(ctx, sess, *step.Link, step.OutgoingEdgeID)
	}

	return e.followEdge(ctx, sess, e.resolveStepEdge(sess.vars, step))
}

// Bind sets a variable of the session.
func (e *Engine) Bind(ctx context.Context, sess *Session, nameOrID, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sess.vars.Bind(nameOrID, value); err != nil {
		return err
	}
	e.logger.Debug("variable bound", "session_id", sess.id, "variable", nameOrID)
	return nil
}

func (e *Engine) checkAdvance(ctx context.Context, sess *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess.status == domain.StatusCompleted {
		return fmt.Errorf("%w: %s", domain.ErrSessionCompleted, sess.id)
	}
	return nil
}

func (e *Engine) display(ctx context.Context, sess *Session, edge domain.Edge, block *domain.Block, startIndex int) domain.Outcome {
	entry := domain.DisplayedEntry{
		Block:          *block,
		StartStepIndex: startIndex,
		GraphID:        sess.active.ID,
	}
	sess.status = domain.StatusAdvancing
	e.emitEdgeVisible(ctx, sess, edge, entry)
	sess.history.Append(entry)
	return domain.OutcomeDisplayed
}

func (e *Engine) complete(ctx context.Context, sess *Session, reason string) domain.Outcome {
	sess.status = domain.StatusCompleted
	e.logger.Info("session completed",
		"session_id", sess.id,
		"reason", reason,
		"displayed", sess.history.Len(),
	)
	e.emitCompleted(ctx, sess, reason)
	return domain.OutcomeCompleted
}
