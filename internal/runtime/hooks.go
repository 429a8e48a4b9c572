package runtime

import (
	"context"
	"time"

	"github.com/aretw0/botflow/pkg/domain"
)

func (e *Engine) base(sess *Session, typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      typ,
		SessionID: sess.id,
		GraphID:   sess.active.ID,
	}
}

func (e *Engine) emitEdgeVisible(ctx context.Context, sess *Session, edge domain.Edge, entry domain.DisplayedEntry) {
	if e.hooks.OnEdgeVisible == nil {
		return
	}
	e.hooks.OnEdgeVisible(ctx, &domain.EdgeEvent{
		EventBase:      e.base(sess, domain.EventEdgeVisible),
		Edge:           edge,
		BlockID:        entry.Block.ID,
		StartStepIndex: entry.StartStepIndex,
	})
}

func (e *Engine) emitCompleted(ctx context.Context, sess *Session, reason string) {
	if e.hooks.OnCompleted == nil {
		return
	}
	e.hooks.OnCompleted(ctx, &domain.CompletionEvent{
		EventBase: e.base(sess, domain.EventCompleted),
		Reason:    reason,
		Displayed: sess.history.Len(),
	})
}

func (e *Engine) emitContinuation(ctx context.Context, sess *Session, edgeID, fromGraph string) {
	if e.hooks.OnContinuation == nil {
		return
	}
	e.hooks.OnContinuation(ctx, &domain.ContinuationEvent{
		EventBase: e.base(sess, domain.EventContinuation),
		EdgeID:    edgeID,
		FromGraph: fromGraph,
	})
}

func (e *Engine) emitVariablesInjected(ctx context.Context, sess *Session, vars []domain.Variable) {
	if e.hooks.OnVariablesInjected == nil || len(vars) == 0 {
		return
	}
	e.hooks.OnVariablesInjected(ctx, &domain.VariablesEvent{
		EventBase: e.base(sess, domain.EventVariablesInjected),
		Variables: vars,
	})
}
