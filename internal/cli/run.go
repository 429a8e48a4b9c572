package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/presentation/tui"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Options
	FlowID     string
	StartBlock string
	JSON       bool              // NDJSON input/output instead of a text conversation
	Variables  map[string]string // Predefined variables
	In         io.Reader         // Defaults to os.Stdin
	Out        io.Writer         // Defaults to os.Stdout
}

// Run starts a session on a flow and converses with the user until it completes
// or input runs out.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := createLogger(opts.Debug)

	engine, closeFn, err := NewEngine(ctx, opts.Options, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	flowID := opts.FlowID
	if flowID == "" {
		if flowID, err = determineEntryFlow(ctx, engine, opts.Dir); err != nil {
			return err
		}
	}

	outFile, _ := opts.Out.(*os.File)
	interactive := !opts.JSON && tui.IsTerminal(outFile)
	if interactive {
		tui.PrintBanner(opts.Out, fmt.Sprintf("v%s | flow %s", botflow.Version, flowID))
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		handler = runner.NewTextHandler(opts.In, opts.Out,
			runner.WithTextHandlerRenderer(tui.NewRenderer(outFile)),
		)
	}

	sess, outcome, err := engine.Start(ctx, flowID, domain.StartOptions{
		StartBlockID: opts.StartBlock,
		Predefined:   opts.Variables,
	})
	if err != nil {
		return fmt.Errorf("failed to start flow %s: %w", flowID, err)
	}
	logger.Info("session started", "session_id", sess.ID(), "flow_id", flowID, "outcome", outcome)

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
	)
	return handleExecutionError(r.Run(ctx, engine, sess))
}

// handleExecutionError treats user interruption as a clean exit.
func handleExecutionError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
