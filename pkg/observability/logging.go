package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/botflow/pkg/domain"
)

// LoggingHooks logs every lifecycle event at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdgeVisible: func(ctx context.Context, e *domain.EdgeEvent) {
			logger.InfoContext(ctx, "block_displayed",
				"session_id", e.SessionID,
				"graph", e.GraphID,
				"edge_id", e.Edge.ID,
				"block_id", e.BlockID,
				"start_step", e.StartStepIndex,
			)
		},
		OnCompleted: func(ctx context.Context, e *domain.CompletionEvent) {
			logger.InfoContext(ctx, "session_completed",
				"session_id", e.SessionID,
				"reason", e.Reason,
				"displayed", e.Displayed,
			)
		},
		OnContinuation: func(ctx context.Context, e *domain.ContinuationEvent) {
			logger.InfoContext(ctx, "continuation_resumed",
				"session_id", e.SessionID,
				"edge_id", e.EdgeID,
				"from_graph", e.FromGraph,
				"to_graph", e.GraphID,
			)
		},
		OnVariablesInjected: func(ctx context.Context, e *domain.VariablesEvent) {
			names := make([]string, len(e.Variables))
			for i, v := range e.Variables {
				names[i] = v.Name
			}
			logger.InfoContext(ctx, "variables_injected",
				"session_id", e.SessionID,
				"variables", names,
			)
		},
	}
}
