package domain

import "strings"

// FlowGraph is one complete conversation definition.
// It is treated as immutable for the duration of a session.
type FlowGraph struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description is free text for humans; the engine ignores it.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Blocks    []Block    `json:"blocks" yaml:"blocks"`
	Edges     []Edge     `json:"edges" yaml:"edges"`
	Variables []Variable `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Block returns the block with the given ID.
func (g *FlowGraph) Block(id string) (*Block, bool) {
	if g == nil || id == "" {
		return nil, false
	}
	for i := range g.Blocks {
		if g.Blocks[i].ID == id {
			return &g.Blocks[i], true
		}
	}
	return nil, false
}

// Edge returns the edge with the given ID.
func (g *FlowGraph) Edge(id string) (*Edge, bool) {
	if g == nil || id == "" {
		return nil, false
	}
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i], true
		}
	}
	return nil, false
}

// Variable looks a variable up by ID first, then by case-insensitive name.
func (g *FlowGraph) Variable(nameOrID string) (*Variable, bool) {
	if g == nil || nameOrID == "" {
		return nil, false
	}
	for i := range g.Variables {
		if g.Variables[i].ID == nameOrID {
			return &g.Variables[i], true
		}
	}
	return g.VariableByName(nameOrID)
}

// VariableByName performs a case-insensitive match on the variable display name.
func (g *FlowGraph) VariableByName(name string) (*Variable, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Variables {
		if strings.EqualFold(g.Variables[i].Name, name) {
			return &g.Variables[i], true
		}
	}
	return nil, false
}

// FirstEdgeID returns the outgoing edge of the first step of the first block.
// This is where a flow starts when no explicit start block is given.
func (g *FlowGraph) FirstEdgeID() string {
	if g == nil || len(g.Blocks) == 0 || len(g.Blocks[0].Steps) == 0 {
		return ""
	}
	return g.Blocks[0].Steps[0].OutgoingEdgeID
}

// Clone returns a copy whose variable values can be mutated without touching the original.
// Blocks and edges are shared since they never change during a session.
func (g *FlowGraph) Clone() *FlowGraph {
	if g == nil {
		return nil
	}
	next := *g
	next.Variables = make([]Variable, len(g.Variables))
	for i, v := range g.Variables {
		next.Variables[i] = v
		if v.Value != nil {
			val := *v.Value
			next.Variables[i].Value = &val
		}
	}
	return &next
}
