package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branchingGraph() *domain.FlowGraph {
	return &domain.FlowGraph{
		ID: "survey",
		Blocks: []domain.Block{
			{ID: "ask", Steps: []domain.Step{
				{ID: "hello", Type: domain.StepTypeText, Content: "Hi!"},
				{ID: "q", Type: domain.StepTypeInput, VariableID: "v-ok", OutgoingEdgeID: "to-ask"},
				{ID: "check", Type: domain.StepTypeCondition, OutgoingEdgeID: "to-no", Branches: []domain.Branch{
					{VariableID: "v-ok", Operator: domain.OperatorEqual, Value: "yes", OutgoingEdgeID: "to-yes"},
					{VariableID: "v-ok", Operator: domain.OperatorContains, Value: "maybe", OutgoingEdgeID: "to-maybe"},
				}},
			}},
			{ID: "yes", Steps: []domain.Step{{ID: "y"}}},
			{ID: "no", Steps: []domain.Step{{ID: "n"}}},
			{ID: "maybe", Steps: []domain.Step{{ID: "m"}}},
		},
		Edges: []domain.Edge{
			{ID: "to-yes", To: domain.Locator{BlockID: "yes"}},
			{ID: "to-no", To: domain.Locator{BlockID: "no"}},
			{ID: "to-maybe", To: domain.Locator{BlockID: "maybe"}},
			{ID: "to-ask", To: domain.Locator{BlockID: "ask", StepID: "check"}},
		},
		Variables: []domain.Variable{{ID: "v-ok", Name: "ok"}},
	}
}

func TestEngine_CompleteStepBranches(t *testing.T) {
	cases := []struct {
		name  string
		value string
		bind  bool
		want  string
	}{
		{name: "Equal ignores case", value: " YES ", bind: true, want: "yes"},
		{name: "Contains", value: "well, maybe later", bind: true, want: "maybe"},
		{name: "Default edge", value: "nope", bind: true, want: "no"},
		{name: "Unbound uses default", want: "no"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			engine, _ := newEngine(nil)
			sess := runtime.NewSession("s", branchingGraph())
			_, err := engine.AdvanceBlock(ctx, sess, "ask")
			require.NoError(t, err)
			if tc.bind {
				require.NoError(t, engine.Bind(ctx, sess, "OK", tc.value))
			}

			outcome, err := engine.CompleteStep(ctx, sess, "check")
			require.NoError(t, err)

			assert.Equal(t, domain.OutcomeDisplayed, outcome)
			last, _ := sess.Last()
			assert.Equal(t, tc.want, last.Block.ID)
		})
	}
}

func TestEngine_CompleteStepFollowsOutgoingEdge(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(nil)
	sess := runtime.NewSession("s", branchingGraph())
	_, err := engine.AdvanceBlock(ctx, sess, "ask")
	require.NoError(t, err)

	_, err = engine.CompleteStep(ctx, sess, "q")
	require.NoError(t, err)

	last, _ := sess.Last()
	assert.Equal(t, "ask", last.Block.ID)
	assert.Equal(t, 2, last.StartStepIndex)
}

func TestEngine_CompleteStepWithoutEdgeCompletes(t *testing.T) {
	ctx := context.Background()
	engine, rec := newEngine(nil)
	sess := runtime.NewSession("s", branchingGraph())
	_, err := engine.AdvanceBlock(ctx, sess, "ask")
	require.NoError(t, err)

	outcome, err := engine.CompleteStep(ctx, sess, "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, outcome)
	assert.Equal(t, []string{domain.ReasonExhausted}, rec.completions)
}

func TestEngine_CompleteStepUnknown(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(nil)
	sess := runtime.NewSession("s", branchingGraph())

	_, err := engine.CompleteStep(ctx, sess, "q")
	assert.ErrorIs(t, err, domain.ErrStepNotFound, "nothing displayed yet")

	_, err = engine.AdvanceBlock(ctx, sess, "yes")
	require.NoError(t, err)
	_, err = engine.CompleteStep(ctx, sess, "q")
	assert.ErrorIs(t, err, domain.ErrStepNotFound, "step belongs to another block")
}
