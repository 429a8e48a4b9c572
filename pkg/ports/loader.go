package ports

import (
	"context"

	"github.com/aretw0/botflow/pkg/domain"
)

// FlowLoader defines how the engine retrieves flow graphs.
// This allows the storage layer (Loam, Redis, Memory) to be decoupled.
type FlowLoader interface {
	// GetFlow returns the compiled graph for the given flow ID.
	// It returns an error wrapping domain.ErrFlowNotFound when the flow does not exist.
	GetFlow(ctx context.Context, id string) (*domain.FlowGraph, error)

	// ListFlows returns the IDs of every flow the loader can resolve, sorted.
	ListFlows(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the ID of a changed flow.
	Watch(ctx context.Context) (<-chan string, error)
}
