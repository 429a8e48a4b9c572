package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/botflow/internal/validator"
)

// ErrValidationFailed is returned when at least one flow has error-level issues.
var ErrValidationFailed = errors.New("validation failed")

// Validate lints the named flows, or every flow when none is named, and
// writes one line per issue to out.
func Validate(ctx context.Context, opts Options, flowIDs []string, out io.Writer) error {
	engine, closeFn, err := NewEngine(ctx, opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}
	defer closeFn()

	if len(flowIDs) == 0 {
		if flowIDs, err = engine.Flows(ctx); err != nil {
			return err
		}
	}

	failed := 0
	for _, id := range flowIDs {
		issues, err := validator.ValidateFlow(ctx, engine.Loader(), id)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", id, err)
			failed++
			continue
		}
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s: ok\n", id)
			continue
		}
		for _, issue := range issues {
			fmt.Fprintf(out, "%s: %s\n", id, issue)
		}
		if validator.HasErrors(issues) {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d flows", ErrValidationFailed, failed, len(flowIDs))
	}
	return nil
}
