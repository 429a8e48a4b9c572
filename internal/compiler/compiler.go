package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// GraphError lists the shape problems that stop a document from compiling.
type GraphError struct {
	FlowID   string
	Problems []string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("invalid flow %q: %s", e.FlowID, strings.Join(e.Problems, "; "))
}

func (e *GraphError) Unwrap() error {
	return domain.ErrInvalidGraph
}

// ParseLocator reads "block" or "block.step".
func ParseLocator(s string) domain.Locator {
	block, step, _ := strings.Cut(strings.TrimSpace(s), ".")
	return domain.Locator{BlockID: block, StepID: step}
}

// FormatLocator is the inverse of ParseLocator.
func FormatLocator(l domain.Locator) string {
	if l.StepID == "" {
		return l.BlockID
	}
	return l.BlockID + "." + l.StepID
}

type compilation struct {
	graph    *domain.FlowGraph
	problems []string
	edges    map[string]bool
}

func (c *compilation) fail(format string, args ...any) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

// Compile turns a document into a FlowGraph, checking only the basic shape:
// identities are present and unique. Reachability and references are linted by
// internal/validator.
func Compile(doc *FlowDocument, fallbackID string) (*domain.FlowGraph, error) {
	if doc == nil {
		return nil, &GraphError{FlowID: fallbackID, Problems: []string{"document is empty"}}
	}

	id := doc.ID
	if id == "" {
		id = fallbackID
	}
	c := &compilation{
		graph: &domain.FlowGraph{ID: id, Name: doc.Name, Description: doc.Description},
		edges: make(map[string]bool),
	}
	if id == "" {
		c.fail("flow has no id")
	}

	// Declared edges first so shorthand edges cannot shadow them.
	for i, e := range doc.Edges {
		c.addEdge(i, e)
	}
	c.compileBlocks(doc.Blocks)
	c.compileVariables(doc.Variables)

	if len(c.problems) > 0 {
		return nil, &GraphError{FlowID: id, Problems: c.problems}
	}
	return c.graph, nil
}

func (c *compilation) addEdge(i int, e EdgeDocument) {
	if e.ID == "" {
		c.fail("edges[%d]: missing id", i)
		return
	}
	if c.edges[e.ID] {
		c.fail("edge %s: duplicate id", e.ID)
		return
	}
	to := ParseLocator(e.To)
	if to.BlockID == "" {
		c.fail("edge %s: missing target block", e.ID)
		return
	}
	c.edges[e.ID] = true
	c.graph.Edges = append(c.graph.Edges, domain.Edge{
		ID:   e.ID,
		From: ParseLocator(e.From),
		To:   to,
	})
}

// shorthand registers the edge implied by a `to:` field and returns its ID.
func (c *compilation) shorthand(from domain.Locator, suffix, to string) string {
	id := FormatLocator(from) + suffix
	if c.edges[id] {
		c.fail("edge %s: duplicate id (from shorthand)", id)
		return id
	}
	c.edges[id] = true
	c.graph.Edges = append(c.graph.Edges, domain.Edge{ID: id, From: from, To: ParseLocator(to)})
	return id
}

func (c *compilation) compileBlocks(blocks []BlockDocument) {
	seen := make(map[string]bool, len(blocks))
	for i, b := range blocks {
		if b.ID == "" {
			c.fail("blocks[%d]: missing id", i)
			continue
		}
		if seen[b.ID] {
			c.fail("block %s: duplicate id", b.ID)
			continue
		}
		seen[b.ID] = true

		block := domain.Block{ID: b.ID, Title: b.Title}
		steps := make(map[string]bool, len(b.Steps))
		for j, s := range b.Steps {
			if s.ID == "" {
				c.fail("block %s: steps[%d]: missing id", b.ID, j)
				continue
			}
			if steps[s.ID] {
				c.fail("block %s: step %s: duplicate id", b.ID, s.ID)
				continue
			}
			steps[s.ID] = true
			block.Steps = append(block.Steps, c.compileStep(b.ID, s))
		}
		c.graph.Blocks = append(c.graph.Blocks, block)
	}
}

func (c *compilation) compileStep(blockID string, s StepDocument) domain.Step {
	from := domain.Locator{BlockID: blockID, StepID: s.ID}
	step := domain.Step{
		ID:             s.ID,
		Type:           strings.ToLower(s.Type),
		Content:        s.Content,
		VariableID:     s.Variable,
		OutgoingEdgeID: s.Next,
	}
	if step.Type == "" {
		step.Type = domain.StepTypeText
	}

	switch step.Type {
	case domain.StepTypeText, domain.StepTypeInput, domain.StepTypeCondition, domain.StepTypeLink:
	default:
		c.fail("block %s: step %s: unknown type %q", blockID, s.ID, s.Type)
	}

	if step.OutgoingEdgeID == "" && s.To != "" {
		step.OutgoingEdgeID = c.shorthand(from, "", s.To)
	}

	for k, b := range s.Branches {
		branch := domain.Branch{
			VariableID:     b.Variable,
			Operator:       strings.ToLower(b.Operator),
			Value:          b.Value,
			OutgoingEdgeID: b.Next,
		}
		if branch.OutgoingEdgeID == "" && b.To != "" {
			branch.OutgoingEdgeID = c.shorthand(from, fmt.Sprintf("#%d", k), b.To)
		}
		step.Branches = append(step.Branches, branch)
	}

	if s.Link != nil {
		step.Link = &domain.LinkTarget{FlowID: s.Link.Flow, BlockID: s.Link.Block}
		if step.Type == domain.StepTypeText {
			step.Type = domain.StepTypeLink
		}
	}
	if step.Type == domain.StepTypeLink && step.Link == nil {
		c.fail("block %s: step %s: link step without target", blockID, s.ID)
	}
	return step
}

func (c *compilation) compileVariables(vars []VariableDocument) {
	seen := make(map[string]bool, len(vars))
	for i, v := range vars {
		variable := domain.Variable{ID: v.ID, Name: v.Name, Value: v.Value}
		if variable.ID == "" {
			variable.ID = variable.Name
		}
		if variable.Name == "" {
			variable.Name = variable.ID
		}
		if variable.ID == "" {
			c.fail("variables[%d]: missing id and name", i)
			continue
		}
		if seen[variable.ID] {
			c.fail("variable %s: duplicate id", variable.ID)
			continue
		}
		seen[variable.ID] = true
		c.graph.Variables = append(c.graph.Variables, variable)
	}
}
