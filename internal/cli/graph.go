package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/botflow/internal/presentation/graph"
)

// Graph writes a Mermaid diagram of flowID (or the entry flow) to out.
func Graph(ctx context.Context, opts Options, flowID string, out io.Writer) error {
	engine, closeFn, err := NewEngine(ctx, opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}
	defer closeFn()

	if flowID == "" {
		if flowID, err = determineEntryFlow(ctx, engine, opts.Dir); err != nil {
			return err
		}
	}
	g, err := engine.Flow(ctx, flowID)
	if err != nil {
		return fmt.Errorf("error loading flow: %w", err)
	}
	_, err = io.WriteString(out, graph.GenerateMermaid(g, nil))
	return err
}
