package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/domain"
)

var (
	// ErrNotStarted is returned when Run is given a session that displayed nothing.
	ErrNotStarted = errors.New("session has not displayed any block")
	// ErrStalled is returned when an advance was ignored and the session cannot move.
	ErrStalled = errors.New("session cannot advance")
)

// Driver is the part of botflow.Engine the runner needs.
type Driver interface {
	AdvanceEdge(ctx context.Context, sess *botflow.Session, edgeID string) (domain.Outcome, error)
	CompleteStep(ctx context.Context, sess *botflow.Session, stepID string) (domain.Outcome, error)
	Bind(ctx context.Context, sess *botflow.Session, nameOrID, value string) error
}

// Runner walks the steps of a session through an IOHandler.
type Runner struct {
	Handler  IOHandler
	Logger   *slog.Logger
	Farewell string
}

// NewRunner creates a Runner over stdin/stdout text IO.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:   logging.NewNop(),
		Farewell: "End of conversation.",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run drives sess until it completes. Running out of input (EOF) ends the loop
// without error, leaving the session where it stopped.
func (r *Runner) Run(ctx context.Context, d Driver, sess *botflow.Session) error {
	if _, ok := sess.Last(); !ok && !sess.Completed() {
		return ErrNotStarted
	}

	for !sess.Completed() {
		if err := ctx.Err(); err != nil {
			return err
		}

		last, _ := sess.Last()
		outcome, err := r.walk(ctx, d, sess, last)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.Logger.Debug("input closed", "session_id", sess.ID(), "block_id", last.Block.ID)
				return nil
			}
			return err
		}
		if outcome == domain.OutcomeIgnored {
			return fmt.Errorf("%w: block %s", ErrStalled, last.Block.ID)
		}
	}

	if r.Farewell != "" {
		return r.Handler.SystemOutput(ctx, r.Farewell)
	}
	return nil
}

// walk presents the pending steps of one displayed block and completes the
// first step that leads somewhere.
func (r *Runner) walk(ctx context.Context, d Driver, sess *botflow.Session, entry domain.DisplayedEntry) (domain.Outcome, error) {
	block := &entry.Block
	if entry.StartStepIndex >= len(block.Steps) {
		// Nothing to show; let the engine drain continuations or complete.
		return d.AdvanceEdge(ctx, sess, "")
	}

	steps := block.Steps[entry.StartStepIndex:]
	for i, step := range steps {
		needsInput, err := r.Handler.Output(ctx, block, step)
		if err != nil {
			return "", fmt.Errorf("output error: %w", err)
		}

		if needsInput {
			answer, err := r.Handler.Input(ctx)
			if err != nil {
				return "", err
			}
			if step.VariableID != "" {
				if err := d.Bind(ctx, sess, step.VariableID, answer); err != nil {
					r.Logger.Warn("answer not stored", "session_id", sess.ID(), "step_id", step.ID, "err", err)
				}
			}
		}

		if leadsSomewhere(step) || i == len(steps)-1 {
			return d.CompleteStep(ctx, sess, step.ID)
		}
	}
	return "", nil
}

func leadsSomewhere(step domain.Step) bool {
	return step.OutgoingEdgeID != "" || len(step.Branches) > 0 || step.Type == domain.StepTypeLink
}
