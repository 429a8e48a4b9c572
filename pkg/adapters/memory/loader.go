package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/botflow/internal/compiler"
	"github.com/aretw0/botflow/pkg/domain"
)

// Loader implements ports.FlowLoader over an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu    sync.RWMutex
	flows map[string]*domain.FlowGraph
}

// NewLoader compiles raw flow documents (YAML or JSON) keyed by flow ID.
func NewLoader(raw map[string]string) (*Loader, error) {
	l := &Loader{flows: make(map[string]*domain.FlowGraph, len(raw))}
	for id, content := range raw {
		g, err := compiler.CompileBytes([]byte(content), id)
		if err != nil {
			return nil, fmt.Errorf("failed to compile flow %s: %w", id, err)
		}
		l.flows[g.ID] = g
	}
	return l, nil
}

// NewFromGraphs creates a loader from domain objects.
func NewFromGraphs(graphs ...*domain.FlowGraph) (*Loader, error) {
	l := &Loader{flows: make(map[string]*domain.FlowGraph, len(graphs))}
	for _, g := range graphs {
		if err := l.Add(g); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers or replaces a flow.
func (l *Loader) Add(g *domain.FlowGraph) error {
	if g == nil || g.ID == "" {
		return fmt.Errorf("%w: flow missing ID", domain.ErrInvalidGraph)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flows[g.ID] = g.Clone()
	return nil
}

// GetFlow returns a private copy of the flow.
func (l *Loader) GetFlow(ctx context.Context, id string) (*domain.FlowGraph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.flows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, id)
	}
	return g.Clone(), nil
}

// ListFlows returns all flow IDs in sorted order.
func (l *Loader) ListFlows(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.flows))
	for k := range l.flows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
