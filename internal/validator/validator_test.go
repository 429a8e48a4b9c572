package validator

import (
	"context"
	"testing"

	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanFlow = `
id: clean
variables:
  - name: answer
blocks:
  - id: start
    steps:
      - id: go
        to: ask
  - id: ask
    steps:
      - id: q
        type: input
        variable: answer
      - id: check
        type: condition
        to: bye
        branches:
          - variable: answer
            operator: contains
            value: help
            to: support
  - id: support
    steps:
      - id: s
        link:
          flow: helpdesk
        to: bye
  - id: bye
    steps:
      - id: b
`

const helpdeskFlow = `
id: helpdesk
blocks:
  - id: hello
    steps:
      - id: h
`

func codes(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Code
	}
	return out
}

func TestValidateFlow_Clean(t *testing.T) {
	loader, err := memory.NewLoader(map[string]string{"clean": cleanFlow, "helpdesk": helpdeskFlow})
	require.NoError(t, err)

	issues, err := ValidateFlow(context.Background(), loader, "clean")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateFlow_LinkTargets(t *testing.T) {
	loader, err := memory.NewLoader(map[string]string{"clean": cleanFlow})
	require.NoError(t, err)

	issues, err := ValidateFlow(context.Background(), loader, "clean")
	require.NoError(t, err)
	assert.Equal(t, []string{CodeUnknownLinkTarget}, codes(issues))
	assert.True(t, HasErrors(issues))

	_, err = ValidateFlow(context.Background(), loader, "missing")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestValidate_Problems(t *testing.T) {
	g := &domain.FlowGraph{
		ID:        "broken",
		Variables: []domain.Variable{{ID: "v1", Name: "name"}},
		Blocks: []domain.Block{
			{ID: "A", Steps: []domain.Step{
				{ID: "s1", Type: domain.StepTypeText, OutgoingEdgeID: "e1"},
				{ID: "s2", Type: domain.StepTypeInput, VariableID: "ghost"},
				{ID: "s3", Type: domain.StepTypeCondition, Branches: []domain.Branch{
					{VariableID: "Name", Operator: "between", OutgoingEdgeID: "nowhere"},
				}},
				{ID: "s4", Type: domain.StepTypeLink},
			}},
			{ID: "B"},
			{ID: "island"},
		},
		Edges: []domain.Edge{
			{ID: "e1", From: domain.Locator{BlockID: "A", StepID: "s1"}, To: domain.Locator{BlockID: "B", StepID: "zz"}},
			{ID: "e2", From: domain.Locator{BlockID: "A", StepID: "nope"}, To: domain.Locator{BlockID: "ghost"}},
			{ID: "e3", From: domain.Locator{BlockID: "void"}, To: domain.Locator{BlockID: "B"}},
		},
	}

	issues := Validate(g)
	assert.Equal(t, []string{
		CodeMissingTargetStep,
		CodeUnknownEdgeSource,
		CodeDanglingEdge,
		CodeUnknownEdgeSource,
		CodeUndeclaredVariable,
		CodeUnknownOperator,
		CodeUndeclaredEdge,
		CodeLinkWithoutFlow,
		CodeUnreachableBlock,
	}, codes(issues))

	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[len(issues)-1].Message, `"island"`)
	assert.True(t, HasErrors(issues))
}

func TestValidate_WarningsOnly(t *testing.T) {
	g := &domain.FlowGraph{
		ID: "soft",
		Blocks: []domain.Block{
			{ID: "A", Steps: []domain.Step{{ID: "q", Type: domain.StepTypeInput}}},
			{ID: "B"},
		},
	}

	issues := Validate(g)
	assert.Equal(t, []string{CodeUndeclaredVariable, CodeUnreachableBlock}, codes(issues))
	assert.False(t, HasErrors(issues))
	assert.Equal(t, `warning [unreachable_block] block "B" cannot be reached from the entry block and only opens by direct entry`, issues[1].String())
}

func TestValidate_Nil(t *testing.T) {
	assert.True(t, HasErrors(Validate(nil)))
}
