package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFlowLoaderContract runs a suite of tests to verify that a FlowLoader implementation
// adheres to the defined interface contract. The loader must already contain every graph
// in expected, keyed by flow ID.
func RunFlowLoaderContract(t *testing.T, loader FlowLoader, expected map[string]*domain.FlowGraph) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetFlow", func(t *testing.T) {
		for id, want := range expected {
			got, err := loader.GetFlow(ctx, id)
			require.NoError(t, err, "GetFlow(%s) should not return error", id)
			require.NotNil(t, got)
			assert.Equal(t, id, got.ID)
			assert.Len(t, got.Blocks, len(want.Blocks))
			assert.Len(t, got.Edges, len(want.Edges))
			assert.Len(t, got.Variables, len(want.Variables))
			for _, b := range want.Blocks {
				_, ok := got.Block(b.ID)
				assert.True(t, ok, "block %s missing from flow %s", b.ID, id)
			}
			for _, e := range want.Edges {
				edge, ok := got.Edge(e.ID)
				if assert.True(t, ok, "edge %s missing from flow %s", e.ID, id) {
					assert.Equal(t, e.To, edge.To)
				}
			}
		}
	})

	t.Run("GetFlow NotFound", func(t *testing.T) {
		_, err := loader.GetFlow(ctx, "non-existent-flow")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrFlowNotFound), "expected ErrFlowNotFound, got %v", err)
	})

	t.Run("ListFlows", func(t *testing.T) {
		ids, err := loader.ListFlows(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, len(expected))
		for id := range expected {
			assert.Contains(t, ids, id)
		}
		assert.IsNonDecreasing(t, ids, "ListFlows must return sorted IDs")
	})

	t.Run("ListFlows Loadable", func(t *testing.T) {
		ids, err := loader.ListFlows(ctx)
		require.NoError(t, err)
		for _, id := range ids {
			got, err := loader.GetFlow(ctx, id)
			require.NoError(t, err, "listed flow %s must load", id)
			assert.Equal(t, id, got.ID)
		}
	})

	t.Run("GetFlow Isolation", func(t *testing.T) {
		for id := range expected {
			first, err := loader.GetFlow(ctx, id)
			require.NoError(t, err)
			if len(first.Variables) == 0 {
				continue
			}
			val := "mutated"
			first.Variables[0].Value = &val

			second, err := loader.GetFlow(ctx, id)
			require.NoError(t, err)
			if second.Variables[0].Value != nil {
				assert.NotEqual(t, val, *second.Variables[0].Value, "loader must not hand out shared variable state")
			}
		}
	})
}
