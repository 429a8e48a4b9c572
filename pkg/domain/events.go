package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEdgeVisible       EventType = "edge_visible"
	EventCompleted         EventType = "completed"
	EventContinuation      EventType = "continuation"
	EventVariablesInjected EventType = "variables_injected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	GraphID   string    `json:"graph_id,omitempty"`
}

// EdgeEvent is emitted once per successful block transition.
type EdgeEvent struct {
	EventBase
	Edge           Edge   `json:"edge"`
	BlockID        string `json:"block_id"`
	StartStepIndex int    `json:"start_step_index"`
}

// CompletionEvent is emitted once, when the session reaches its terminal state.
type CompletionEvent struct {
	EventBase
	Reason    string `json:"reason"`
	Displayed int    `json:"displayed"` // Blocks shown over the session's life
}

// Completion reasons.
const (
	ReasonExhausted    = "exhausted"     // No edge to follow and nothing queued
	ReasonDanglingEdge = "dangling_edge" // Edge target block does not exist
	ReasonEmptyGraph   = "empty_graph"   // Flow had no starting point
)

// ContinuationEvent is emitted when a queued continuation is consumed.
type ContinuationEvent struct {
	EventBase
	EdgeID    string `json:"edge_id"`
	FromGraph string `json:"from_graph"`
}

// VariablesEvent is emitted after predefined variables are injected.
type VariablesEvent struct {
	EventBase
	Variables []Variable `json:"variables"`
}

// LifecycleHooks defines callbacks for engine observability.
// OnEdgeVisible runs before the block is appended to the session history.
type LifecycleHooks struct {
	OnEdgeVisible       func(context.Context, *EdgeEvent)
	OnCompleted         func(context.Context, *CompletionEvent)
	OnContinuation      func(context.Context, *ContinuationEvent)
	OnVariablesInjected func(context.Context, *VariablesEvent)
}

// MergeHooks combines several hook sets; callbacks run in argument order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnEdgeVisible != nil {
			prev := merged.OnEdgeVisible
			merged.OnEdgeVisible = func(ctx context.Context, e *EdgeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnEdgeVisible(ctx, e)
			}
		}
		if h.OnCompleted != nil {
			prev := merged.OnCompleted
			merged.OnCompleted = func(ctx context.Context, e *CompletionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnCompleted(ctx, e)
			}
		}
		if h.OnContinuation != nil {
			prev := merged.OnContinuation
			merged.OnContinuation = func(ctx context.Context, e *ContinuationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnContinuation(ctx, e)
			}
		}
		if h.OnVariablesInjected != nil {
			prev := merged.OnVariablesInjected
			merged.OnVariablesInjected = func(ctx context.Context, e *VariablesEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnVariablesInjected(ctx, e)
			}
		}
	}
	return merged
}
