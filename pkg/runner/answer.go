package runner

import (
	"context"
	"fmt"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/pkg/domain"
)

// Answer sanitizes value and stores it in the variable of the input step
// stepID of the last displayed block. Non-input steps accept and drop the value.
// Rich clients call it right before completing the step.
func Answer(ctx context.Context, d Driver, sess *botflow.Session, stepID, value string) error {
	clean, err := SanitizeInput(value)
	if err != nil {
		return err
	}
	last, ok := sess.Last()
	if !ok {
		return fmt.Errorf("%w: %s (nothing displayed yet)", domain.ErrStepNotFound, stepID)
	}
	step, ok := last.Block.Step(stepID)
	if !ok {
		return fmt.Errorf("%w: %s in block %s", domain.ErrStepNotFound, stepID, last.Block.ID)
	}
	if step.Type != domain.StepTypeInput || step.VariableID == "" {
		return nil
	}
	return d.Bind(ctx, sess, step.VariableID, clean)
}
