package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/botflow/pkg/domain"
)

// ErrNoLoader is returned when a link needs another flow but the engine has no loader.
var ErrNoLoader = errors.New("engine has no flow loader")

// Link hands control to another flow. returnEdgeID is queued against the current
// active graph so the embedding flow resumes once the linked flow runs out of edges.
func (e *Engine) Link(ctx context.Context, sess *Session, target domain.LinkTarget, returnEdgeID string) (domain.Outcome, error) {
	if err := e.checkAdvance(ctx, sess); err != nil {
		return "", err
	}
	return e.link(ctx, sess, target, returnEdgeID)
}

func (e *Engine) link(ctx context.Context, sess *Session, target domain.LinkTarget, returnEdgeID string) (domain.Outcome, error) {
	// A link into the active flow is a plain jump.
	if target.FlowID == "" || target.FlowID == sess.active.ID {
		if target.BlockID == "" {
			return e.followEdge(ctx, sess, sess.active.FirstEdgeID())
		}
		return e.AdvanceBlock(ctx, sess, target.BlockID)
	}

	if e.loader == nil {
		return "", ErrNoLoader
	}
	linked, err := e.loader.GetFlow(ctx, target.FlowID)
	if err != nil {
		return "", fmt.Errorf("failed to load linked flow %s: %w", target.FlowID, err)
	}

	var block *domain.Block
	if target.BlockID != "" {
		b, ok := linked.Block(target.BlockID)
		if !ok {
			e.logger.Warn("link ignored: block not found in linked flow",
				"session_id", sess.id,
				"flow_id", target.FlowID,
				"block_id", target.BlockID,
			)
			return domain.OutcomeIgnored, nil
		}
		block = b
	}

	sess.queue.Enqueue(domain.ContinuationEntry{Graph: sess.active, EdgeID: returnEdgeID})
	sess.vars.Merge(linked.Variables)
	e.logger.Debug("linked flow entered",
		"session_id", sess.id,
		"from_graph", sess.active.ID,
		"to_graph", linked.ID,
		"return_edge", returnEdgeID,
	)
	sess.active = linked

	if block != nil {
		return e.display(ctx, sess, domain.SyntheticEdge(block.ID), block, 0), nil
	}
	return e.followEdge(ctx, sess, linked.FirstEdgeID())
}
