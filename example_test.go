package botflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/domain"
)

// ExampleNew_memory builds a flow in memory and walks it edge by edge.
func ExampleNew_memory() {
	loader, err := memory.NewFromGraphs(&domain.FlowGraph{
		ID: "hello",
		Blocks: []domain.Block{
			{ID: "A", Title: "Welcome", Steps: []domain.Step{{ID: "s1", OutgoingEdgeID: "e1"}}},
			{ID: "B", Title: "Goodbye", Steps: []domain.Step{{ID: "s2"}}},
		},
		Edges: []domain.Edge{
			{ID: "e1", From: domain.Locator{BlockID: "A", StepID: "s1"}, To: domain.Locator{BlockID: "B"}},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	eng, err := botflow.New("", botflow.WithLoader(loader), botflow.WithLifecycleHooks(domain.LifecycleHooks{
		OnEdgeVisible: func(_ context.Context, e *domain.EdgeEvent) {
			fmt.Printf("edge %s -> block %s\n", e.Edge.ID, e.BlockID)
		},
		OnCompleted: func(_ context.Context, e *domain.CompletionEvent) {
			fmt.Printf("completed (%s) after %d blocks\n", e.Reason, e.Displayed)
		},
	}))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, _, err := eng.Start(ctx, "hello", domain.StartOptions{StartBlockID: "A"})
	if err != nil {
		log.Fatal(err)
	}
	if _, err := eng.AdvanceEdge(ctx, sess, "e1"); err != nil {
		log.Fatal(err)
	}
	if _, err := eng.AdvanceEdge(ctx, sess, "no-such-edge"); err != nil {
		log.Fatal(err)
	}

	// Output:
	// edge edgeId -> block A
	// edge e1 -> block B
	// completed (exhausted) after 2 blocks
}
