package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mainFlow: intro(go -> to-sub link) then outro via "back".
// sub: start(s -> to-q) then q(ask).
func linkedFlows() (*domain.FlowGraph, *domain.FlowGraph) {
	main := &domain.FlowGraph{
		ID: "main",
		Blocks: []domain.Block{
			{ID: "intro", Steps: []domain.Step{
				{ID: "go", Type: domain.StepTypeLink, OutgoingEdgeID: "back", Link: &domain.LinkTarget{FlowID: "sub"}},
			}},
			{ID: "outro", Title: "Thanks", Steps: []domain.Step{{ID: "bye"}}},
		},
		Edges:     []domain.Edge{{ID: "back", To: domain.Locator{BlockID: "outro"}}},
		Variables: []domain.Variable{{ID: "v-name", Name: "name"}},
	}
	sub := &domain.FlowGraph{
		ID: "sub",
		Blocks: []domain.Block{
			{ID: "start", Steps: []domain.Step{{ID: "s", OutgoingEdgeID: "to-q"}}},
			{ID: "q", Steps: []domain.Step{{ID: "ask", Type: domain.StepTypeInput, VariableID: "v-color"}}},
		},
		Edges:     []domain.Edge{{ID: "to-q", To: domain.Locator{BlockID: "q"}}},
		Variables: []domain.Variable{{ID: "v-color", Name: "color"}},
	}
	return main, sub
}

func TestEngine_LinkSplicesAndResumes(t *testing.T) {
	ctx := context.Background()
	main, sub := linkedFlows()
	engine, rec := newEngine(&fakeLoader{flows: map[string]*domain.FlowGraph{"main": main, "sub": sub}})
	sess := runtime.NewSession("s", main)

	_, err := engine.AdvanceBlock(ctx, sess, "intro")
	require.NoError(t, err)

	outcome, err := engine.CompleteStep(ctx, sess, "go")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDisplayed, outcome)
	assert.Equal(t, "sub", sess.ActiveGraph().ID)
	assert.Equal(t, 1, sess.Continuations().Len())

	require.NoError(t, engine.Bind(ctx, sess, "color", "blue"))

	outcome, err = engine.CompleteStep(ctx, sess, "ask")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDisplayed, outcome)
	assert.Empty(t, rec.completions)
	assert.Equal(t, []string{"back"}, rec.continuations)
	assert.Equal(t, []string{"intro", "q", "outro"}, blockIDs(sess.History()))
	assert.Equal(t, "main", sess.ActiveGraph().ID)

	history := sess.History()
	assert.Equal(t, "sub", history[1].GraphID)
	assert.Equal(t, "main", history[2].GraphID)
	assert.Equal(t, map[string]string{"color": "blue"}, sess.Snapshot().Variables)

	outcome, err = engine.CompleteStep(ctx, sess, "bye")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, outcome)
}

func TestEngine_LinkDirectBlock(t *testing.T) {
	ctx := context.Background()
	main, sub := linkedFlows()
	engine, _ := newEngine(&fakeLoader{flows: map[string]*domain.FlowGraph{"sub": sub}})
	sess := runtime.NewSession("s", main)

	outcome, err := engine.Link(ctx, sess, domain.LinkTarget{FlowID: "sub", BlockID: "q"}, "back")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDisplayed, outcome)
	assert.Equal(t, []string{"q"}, blockIDs(sess.History()))

	t.Run("Unknown block leaves session untouched", func(t *testing.T) {
		other := runtime.NewSession("o", main)
		outcome, err := engine.Link(ctx, other, domain.LinkTarget{FlowID: "sub", BlockID: "ghost"}, "back")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeIgnored, outcome)
		assert.Equal(t, "main", other.ActiveGraph().ID)
		assert.Equal(t, 0, other.Continuations().Len())
	})
}

func TestEngine_LinkErrors(t *testing.T) {
	ctx := context.Background()
	main, _ := linkedFlows()

	t.Run("No loader", func(t *testing.T) {
		engine, _ := newEngine(nil)
		_, err := engine.Link(ctx, runtime.NewSession("s", main), domain.LinkTarget{FlowID: "sub"}, "back")
		assert.ErrorIs(t, err, runtime.ErrNoLoader)
	})

	t.Run("Unknown flow", func(t *testing.T) {
		engine, _ := newEngine(&fakeLoader{flows: map[string]*domain.FlowGraph{}})
		_, err := engine.Link(ctx, runtime.NewSession("s", main), domain.LinkTarget{FlowID: "sub"}, "back")
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Same flow is a jump", func(t *testing.T) {
		engine, _ := newEngine(nil)
		sess := runtime.NewSession("s", main)
		_, err := engine.Link(ctx, sess, domain.LinkTarget{FlowID: "main", BlockID: "outro"}, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"outro"}, blockIDs(sess.History()))
		assert.Equal(t, 0, sess.Continuations().Len())
	})
}
