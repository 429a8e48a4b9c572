package dsl

import (
	"github.com/aretw0/botflow/internal/compiler"
	"github.com/aretw0/botflow/pkg/domain"
)

// BlockBuilder provides a fluent API for configuring a block.
type BlockBuilder struct {
	doc   compiler.BlockDocument
	steps []*StepBuilder
}

// Title sets the title shown for the block.
func (b *BlockBuilder) Title(title string) *BlockBuilder {
	b.doc.Title = title
	return b
}

// Text appends a text step.
func (b *BlockBuilder) Text(id, content string) *StepBuilder {
	return b.add(compiler.StepDocument{ID: id, Type: domain.StepTypeText, Content: content})
}

// Input appends a step that asks for a value and binds it to variable.
func (b *BlockBuilder) Input(id, prompt, variable string) *StepBuilder {
	return b.add(compiler.StepDocument{ID: id, Type: domain.StepTypeInput, Content: prompt, Variable: variable})
}

// Condition appends a step that routes on variable values. Add branches with When.
func (b *BlockBuilder) Condition(id string) *StepBuilder {
	return b.add(compiler.StepDocument{ID: id, Type: domain.StepTypeCondition})
}

// Link appends a step that continues in another flow. An empty blockID enters
// the flow through its first edge.
func (b *BlockBuilder) Link(id, flowID, blockID string) *StepBuilder {
	return b.add(compiler.StepDocument{
		ID:   id,
		Type: domain.StepTypeLink,
		Link: &compiler.LinkDocument{Flow: flowID, Block: blockID},
	})
}

func (b *BlockBuilder) add(doc compiler.StepDocument) *StepBuilder {
	sb := &StepBuilder{doc: doc, block: b}
	b.steps = append(b.steps, sb)
	return sb
}

func (b *BlockBuilder) document() compiler.BlockDocument {
	doc := b.doc
	doc.Steps = make([]compiler.StepDocument, 0, len(b.steps))
	for _, sb := range b.steps {
		doc.Steps = append(doc.Steps, sb.doc)
	}
	return doc
}

// StepBuilder configures where a step leads.
type StepBuilder struct {
	doc   compiler.StepDocument
	block *BlockBuilder
}

// To adds the step's outgoing edge to a "block" or "block.step" target.
// The edge is named after the step, as "block.step".
func (s *StepBuilder) To(target string) *StepBuilder {
	s.doc.To = target
	return s
}

// Next points the step at a declared edge.
func (s *StepBuilder) Next(edgeID string) *StepBuilder {
	s.doc.Next = edgeID
	return s
}

// When adds a branch taken when variable compares to value with operator
// (equal, not_equal, contains, is_set, is_empty; empty means equal).
// Branches are tried in order.
func (s *StepBuilder) When(variable, operator, value, target string) *StepBuilder {
	s.doc.Branches = append(s.doc.Branches, compiler.BranchDocument{
		Variable: variable,
		Operator: operator,
		Value:    value,
		To:       target,
	})
	return s
}

// Block returns the block the step belongs to, to keep adding steps.
func (s *StepBuilder) Block() *BlockBuilder {
	return s.block
}
