package runner

import (
	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/pkg/domain"
)

// View is what a client should show next: the steps of the last displayed
// block, starting at the step the session entered it on.
// Rich clients (HTTP, MCP) return it after every advance.
type View struct {
	SessionID string               `json:"session_id"`
	FlowID    string               `json:"flow_id"`
	Status    domain.SessionStatus `json:"status"`
	BlockID   string               `json:"block_id,omitempty"`
	Title     string               `json:"title,omitempty"`
	Steps     []domain.Step        `json:"steps,omitempty"`
	Outcome   domain.Outcome       `json:"outcome,omitempty"`
}

// CurrentView renders the session's pending steps.
func CurrentView(sess *botflow.Session) View {
	v := View{
		SessionID: sess.ID(),
		FlowID:    sess.ActiveGraph().ID,
		Status:    sess.Status(),
	}
	if sess.Completed() {
		return v
	}
	last, ok := sess.Last()
	if !ok {
		return v
	}
	v.BlockID = last.Block.ID
	v.Title = last.Block.Title
	if last.StartStepIndex < len(last.Block.Steps) {
		v.Steps = last.Block.Steps[last.StartStepIndex:]
	}
	return v
}

// ViewAfter is CurrentView annotated with the outcome of the advance that produced it.
func ViewAfter(sess *botflow.Session, outcome domain.Outcome) View {
	v := CurrentView(sess)
	v.Outcome = outcome
	return v
}
