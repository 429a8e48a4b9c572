/*
Package botflow is a traversal engine for block-based conversational flows.

A flow is a graph of blocks. Each block holds ordered steps, and edges connect a
step to the block (optionally the step) shown next. The engine walks that graph for
one conversation at a time, keeping an append-only history of what was displayed and
a queue of continuations that lets one flow embed another and resume afterwards.

# Concept

The engine only decides what comes next. Rendering step content and collecting
input is the job of the host, such as a CLI, an HTTP server or an MCP agent. Hosts learn about progress through LifecycleHooks and drive the session
with three calls: AdvanceBlock (direct entry), AdvanceEdge (follow an edge) and
CompleteStep (finish a step and follow what it leads to).

Absence is never an error. An unknown block is simply ignored, and an unknown
edge with nothing queued completes the session.

# Usage

	eng, err := botflow.New("./flows")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, outcome, err := eng.Start(ctx, "welcome", domain.StartOptions{
		Predefined: map[string]string{"name": "Ada"},
	})
	if err != nil {
		log.Fatal(err)
	}

	for outcome != domain.OutcomeCompleted {
		last, _ := sess.Last()
		step := last.Block.Steps[len(last.Block.Steps)-1]
		outcome, err = eng.CompleteStep(ctx, sess, step.ID)
		if err != nil {
			log.Fatal(err)
		}
	}

Flows are read from a directory through Loam by default. Use WithLoader to plug in
the in-memory or Redis loaders from pkg/adapters.
*/
package botflow
