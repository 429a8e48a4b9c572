package botflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onboarding = `
id: onboarding
variables:
  - name: name
  - name: plan
blocks:
  - id: start
    steps:
      - id: begin
        to: greet
  - id: greet
    title: Welcome
    steps:
      - id: hello
        content: "Hi {{name}}"
      - id: pick
        type: input
        variable: plan
      - id: route
        type: condition
        to: free
        branches:
          - variable: plan
            value: pro
            to: pro
  - id: free
    steps:
      - id: free-end
  - id: pro
    steps:
      - id: billing
        link:
          flow: billing
        next: after-billing
  - id: thanks
    steps:
      - id: bye
edges:
  - id: after-billing
    to: thanks
`

const billing = `
id: billing
variables:
  - name: card
blocks:
  - id: intro
    steps:
      - id: i
        to: card
  - id: card
    steps:
      - id: ask-card
        type: input
        variable: card
`

func newEngine(t *testing.T, opts ...botflow.Option) *botflow.Engine {
	t.Helper()
	loader, err := memory.NewLoader(map[string]string{"onboarding": onboarding, "billing": billing})
	require.NoError(t, err)
	eng, err := botflow.New("", append([]botflow.Option{botflow.WithLoader(loader)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestEngine_EndToEnd(t *testing.T) {
	ctx := context.Background()
	var completed []string
	eng := newEngine(t,
		botflow.WithIDGenerator(func() string { return "fixed" }),
		botflow.WithLifecycleHooks(domain.LifecycleHooks{
			OnCompleted: func(_ context.Context, e *domain.CompletionEvent) { completed = append(completed, e.Reason) },
		}),
	)

	sess, outcome, err := eng.Start(ctx, "onboarding", domain.StartOptions{
		Predefined: map[string]string{"NAME": "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed", sess.ID())
	assert.Equal(t, domain.OutcomeDisplayed, outcome)

	last, _ := sess.Last()
	assert.Equal(t, "greet", last.Block.ID)

	require.NoError(t, eng.Bind(ctx, sess, "plan", "PRO"))
	_, err = eng.CompleteStep(ctx, sess, "route")
	require.NoError(t, err)

	_, err = eng.CompleteStep(ctx, sess, "billing")
	require.NoError(t, err)
	assert.Equal(t, "billing", sess.ActiveGraph().ID)

	_, err = eng.CompleteStep(ctx, sess, "ask-card")
	require.NoError(t, err)

	snap := sess.Snapshot()
	assert.Equal(t, "onboarding", snap.ActiveFlowID)
	ids := make([]string, len(snap.History))
	for i, h := range snap.History {
		ids[i] = h.BlockID
	}
	assert.Equal(t, []string{"greet", "pro", "card", "thanks"}, ids)
	assert.Empty(t, completed, "returning from a linked flow is not completion")

	outcome, err = eng.CompleteStep(ctx, sess, "bye")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, outcome)
	assert.Equal(t, []string{domain.ReasonExhausted}, completed)
	assert.Equal(t, map[string]string{"name": "Ada", "plan": "PRO"}, snap.Variables)
}

func TestEngine_StartUnknownFlow(t *testing.T) {
	eng := newEngine(t)
	_, _, err := eng.Start(context.Background(), "nope", domain.StartOptions{})
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestEngine_Flows(t *testing.T) {
	eng := newEngine(t)
	ids, err := eng.Flows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "onboarding"}, ids)

	_, err = eng.Watch(context.Background())
	assert.Error(t, err, "memory loader cannot be watched")
}

func TestNew_RequiresPathOrLoader(t *testing.T) {
	_, err := botflow.New("")
	assert.Error(t, err)
}

func TestNew_Directory(t *testing.T) {
	dir := t.TempDir()
	doc := `{"id":"hello","blocks":[{"id":"a","steps":[{"id":"s"}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.json"), []byte(doc), 0644))

	eng, err := botflow.New(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), eng.Name)

	ctx := context.Background()
	sess, err := eng.NewSession(ctx, "hello")
	require.NoError(t, err)
	outcome, err := eng.Enter(ctx, sess, domain.StartOptions{StartBlockID: "a"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDisplayed, outcome)
}
