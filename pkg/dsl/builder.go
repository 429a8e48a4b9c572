package dsl

import (
	"fmt"

	"github.com/aretw0/botflow/internal/compiler"
	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/domain"
)

// FlowBuilder manages the graph construction.
type FlowBuilder struct {
	doc    compiler.FlowDocument
	blocks map[string]*BlockBuilder
	order  []*BlockBuilder
}

// NewFlow creates a new builder for the flow id.
func NewFlow(id string) *FlowBuilder {
	return &FlowBuilder{
		doc:    compiler.FlowDocument{ID: id},
		blocks: make(map[string]*BlockBuilder),
	}
}

// Name sets the display name of the flow.
func (f *FlowBuilder) Name(name string) *FlowBuilder {
	f.doc.Name = name
	return f
}

// Describe sets the flow description.
func (f *FlowBuilder) Describe(description string) *FlowBuilder {
	f.doc.Description = description
	return f
}

// Var declares a variable with no default value.
func (f *FlowBuilder) Var(name string) *FlowBuilder {
	f.doc.Variables = append(f.doc.Variables, compiler.VariableDocument{Name: name})
	return f
}

// VarDefault declares a variable bound to value when a session starts.
func (f *FlowBuilder) VarDefault(name, value string) *FlowBuilder {
	f.doc.Variables = append(f.doc.Variables, compiler.VariableDocument{Name: name, Value: &value})
	return f
}

// Edge declares a named edge; from and to are "block" or "block.step" locators.
func (f *FlowBuilder) Edge(id, from, to string) *FlowBuilder {
	f.doc.Edges = append(f.doc.Edges, compiler.EdgeDocument{ID: id, From: from, To: to})
	return f
}

// Block adds a block. The first block added is the entry block.
// If the block already exists, it returns the existing builder.
func (f *FlowBuilder) Block(id string) *BlockBuilder {
	if bb, ok := f.blocks[id]; ok {
		return bb
	}
	bb := &BlockBuilder{doc: compiler.BlockDocument{ID: id}}
	f.blocks[id] = bb
	f.order = append(f.order, bb)
	return bb
}

// Document returns the flow document the builder describes.
func (f *FlowBuilder) Document() *compiler.FlowDocument {
	doc := f.doc
	doc.Blocks = make([]compiler.BlockDocument, 0, len(f.order))
	for _, bb := range f.order {
		doc.Blocks = append(doc.Blocks, bb.document())
	}
	return &doc
}

// Graph compiles the flow.
func (f *FlowBuilder) Graph() (*domain.FlowGraph, error) {
	return compiler.Compile(f.Document(), f.doc.ID)
}

// Build compiles the flow into a memory loader, together with any extra graphs
// it links to.
func (f *FlowBuilder) Build(linked ...*domain.FlowGraph) (*memory.Loader, error) {
	g, err := f.Graph()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromGraphs(append([]*domain.FlowGraph{g}, linked...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
