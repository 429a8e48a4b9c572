package runtime_test

import (
	"context"

	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

// recorder captures every notification in emission order.
type recorder struct {
	edges         []domain.Edge
	completions   []string
	continuations []string
	injected      [][]domain.Variable
	order         []domain.EventType
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdgeVisible: func(_ context.Context, e *domain.EdgeEvent) {
			r.edges = append(r.edges, e.Edge)
			r.order = append(r.order, e.Type)
		},
		OnCompleted: func(_ context.Context, e *domain.CompletionEvent) {
			r.completions = append(r.completions, e.Reason)
			r.order = append(r.order, e.Type)
		},
		OnContinuation: func(_ context.Context, e *domain.ContinuationEvent) {
			r.continuations = append(r.continuations, e.EdgeID)
			r.order = append(r.order, e.Type)
		},
		OnVariablesInjected: func(_ context.Context, e *domain.VariablesEvent) {
			r.injected = append(r.injected, e.Variables)
			r.order = append(r.order, e.Type)
		},
	}
}

func newEngine(loader ports.FlowLoader) (*runtime.Engine, *recorder) {
	rec := &recorder{}
	return runtime.NewEngine(loader, runtime.WithLifecycleHooks(rec.hooks())), rec
}

// twoBlockGraph is A(s1 -> e1) -> B(s2).
func twoBlockGraph() *domain.FlowGraph {
	return &domain.FlowGraph{
		ID: "main",
		Blocks: []domain.Block{
			{ID: "A", Title: "Welcome", Steps: []domain.Step{{ID: "s1", OutgoingEdgeID: "e1"}}},
			{ID: "B", Title: "Goodbye", Steps: []domain.Step{{ID: "s2"}}},
		},
		Edges: []domain.Edge{
			{ID: "e1", From: domain.Locator{BlockID: "A", StepID: "s1"}, To: domain.Locator{BlockID: "B"}},
		},
		Variables: []domain.Variable{
			{ID: "v-name", Name: "name"},
			{ID: "v-full", Name: "full_name"},
		},
	}
}

func blockIDs(entries []domain.DisplayedEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Block.ID
	}
	return ids
}

func strPtr(s string) *string { return &s }

type fakeLoader struct {
	flows map[string]*domain.FlowGraph
}

func (f *fakeLoader) GetFlow(_ context.Context, id string) (*domain.FlowGraph, error) {
	g, ok := f.flows[id]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	return g.Clone(), nil
}

func (f *fakeLoader) ListFlows(context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.flows))
	for id := range f.flows {
		ids = append(ids, id)
	}
	return ids, nil
}
