package runtime

import (
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// resolveStepEdge picks the edge a finished step leads to.
// Branches are evaluated in order; the default outgoing edge is the fallback.
func (e *Engine) resolveStepEdge(vars *VariableStore, step *domain.Step) string {
	for _, b := range step.Branches {
		if evaluateBranch(vars, b) {
			return b.OutgoingEdgeID
		}
	}
	return step.OutgoingEdgeID
}

func evaluateBranch(vars *VariableStore, b domain.Branch) bool {
	value := ""
	if v, ok := vars.Get(b.VariableID); ok {
		value = v.StringValue()
	}
	isSet := strings.TrimSpace(value) != ""

	switch strings.ToLower(b.Operator) {
	case domain.OperatorEqual, "":
		return strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(b.Value))
	case domain.OperatorNotEqual:
		return !strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(b.Value))
	case domain.OperatorContains:
		return isSet && strings.Contains(strings.ToLower(value), strings.ToLower(b.Value))
	case domain.OperatorIsSet:
		return isSet
	case domain.OperatorIsEmpty:
		return !isSet
	default:
		return false
	}
}
