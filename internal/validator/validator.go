package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

// Severity grades an Issue. Errors break traversal; warnings are legal but suspicious.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeDanglingEdge       = "dangling_edge"
	CodeMissingTargetStep  = "missing_target_step"
	CodeUnknownEdgeSource  = "unknown_edge_source"
	CodeUndeclaredEdge     = "undeclared_edge"
	CodeUndeclaredVariable = "undeclared_variable"
	CodeUnknownOperator    = "unknown_operator"
	CodeLinkWithoutFlow    = "link_without_flow"
	CodeUnknownLinkTarget  = "unknown_link_target"
	CodeUnreachableBlock   = "unreachable_block"
)

// Issue is one finding about a flow graph.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s", i.Severity, i.Code, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

var knownOperators = map[string]bool{
	"":                      true, // equal
	domain.OperatorEqual:    true,
	domain.OperatorNotEqual: true,
	domain.OperatorContains: true,
	domain.OperatorIsSet:    true,
	domain.OperatorIsEmpty:  true,
}

type collector []Issue

func (c *collector) errorf(code, format string, args ...any) {
	*c = append(*c, Issue{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) warnf(code, format string, args ...any) {
	*c = append(*c, Issue{Severity: SeverityWarning, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Validate lints a compiled flow graph without running it.
// Issues are reported in graph order: edges, then blocks and their steps, then reachability.
func Validate(g *domain.FlowGraph) []Issue {
	var c collector
	if g == nil {
		c.errorf(CodeDanglingEdge, "flow graph is nil")
		return c
	}

	for _, e := range g.Edges {
		checkEdge(&c, g, e)
	}

	for _, b := range g.Blocks {
		for _, s := range b.Steps {
			checkStep(&c, g, b, s)
		}
	}

	for _, id := range unreachable(g) {
		c.warnf(CodeUnreachableBlock, "block %q cannot be reached from the entry block and only opens by direct entry", id)
	}
	return c
}

func checkEdge(c *collector, g *domain.FlowGraph, e domain.Edge) {
	if e.From.BlockID != "" {
		from, ok := g.Block(e.From.BlockID)
		switch {
		case !ok:
			c.errorf(CodeUnknownEdgeSource, "edge %q starts at unknown block %q", e.ID, e.From.BlockID)
		case e.From.StepID != "":
			if _, ok := from.Step(e.From.StepID); !ok {
				c.errorf(CodeUnknownEdgeSource, "edge %q starts at unknown step %q of block %q", e.ID, e.From.StepID, e.From.BlockID)
			}
		}
	}

	to, ok := g.Block(e.To.BlockID)
	if !ok {
		c.errorf(CodeDanglingEdge, "edge %q points at unknown block %q and ends the session", e.ID, e.To.BlockID)
		return
	}
	if e.To.StepID != "" {
		if _, ok := to.Step(e.To.StepID); !ok {
			c.warnf(CodeMissingTargetStep, "edge %q points at unknown step %q of block %q; traversal starts at the first step", e.ID, e.To.StepID, e.To.BlockID)
		}
	}
}

func checkStep(c *collector, g *domain.FlowGraph, b domain.Block, s domain.Step) {
	where := b.ID + "." + s.ID

	if s.OutgoingEdgeID != "" {
		if _, ok := g.Edge(s.OutgoingEdgeID); !ok {
			c.errorf(CodeUndeclaredEdge, "step %s leads to undeclared edge %q", where, s.OutgoingEdgeID)
		}
	}

	switch s.Type {
	case domain.StepTypeInput:
		if s.VariableID == "" {
			c.warnf(CodeUndeclaredVariable, "input step %s stores its answer nowhere", where)
		} else if _, ok := g.Variable(s.VariableID); !ok {
			c.errorf(CodeUndeclaredVariable, "input step %s writes undeclared variable %q", where, s.VariableID)
		}
	case domain.StepTypeCondition:
		for i, br := range s.Branches {
			if _, ok := g.Variable(br.VariableID); !ok {
				c.errorf(CodeUndeclaredVariable, "branch %d of %s reads undeclared variable %q", i, where, br.VariableID)
			}
			if !knownOperators[strings.ToLower(br.Operator)] {
				c.errorf(CodeUnknownOperator, "branch %d of %s uses unknown operator %q", i, where, br.Operator)
			}
			if br.OutgoingEdgeID == "" {
				continue
			}
			if _, ok := g.Edge(br.OutgoingEdgeID); !ok {
				c.errorf(CodeUndeclaredEdge, "branch %d of %s leads to undeclared edge %q", i, where, br.OutgoingEdgeID)
			}
		}
	case domain.StepTypeLink:
		if s.Link == nil || s.Link.FlowID == "" {
			c.errorf(CodeLinkWithoutFlow, "link step %s names no flow", where)
		}
	}
}

// unreachable returns the blocks no edge chain from the first block reaches, in graph order.
func unreachable(g *domain.FlowGraph) []string {
	if len(g.Blocks) == 0 {
		return nil
	}

	next := make(map[string][]string)
	for _, e := range g.Edges {
		next[e.From.BlockID] = append(next[e.From.BlockID], e.To.BlockID)
	}

	visited := map[string]bool{g.Blocks[0].ID: true}
	queue := []string{g.Blocks[0].ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, target := range next[current] {
			if !visited[target] {
				visited[target] = true
				queue = append(queue, target)
			}
		}
	}

	var out []string
	for _, b := range g.Blocks {
		if !visited[b.ID] {
			out = append(out, b.ID)
		}
	}
	return out
}

// ValidateFlow loads flowID and lints it, also checking that every link step
// points at a flow (and block) the loader can resolve.
// The error is only set when the flow itself cannot be loaded.
func ValidateFlow(ctx context.Context, loader ports.FlowLoader, flowID string) ([]Issue, error) {
	g, err := loader.GetFlow(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("flow '%s' not loadable: %w", flowID, err)
	}

	c := collector(Validate(g))
	linked := make(map[string]*domain.FlowGraph)
	for _, b := range g.Blocks {
		for _, s := range b.Steps {
			if s.Type != domain.StepTypeLink || s.Link == nil || s.Link.FlowID == "" {
				continue
			}
			target, ok := linked[s.Link.FlowID]
			if !ok {
				target, err = loader.GetFlow(ctx, s.Link.FlowID)
				if err != nil {
					if !errors.Is(err, domain.ErrFlowNotFound) {
						return nil, fmt.Errorf("linked flow '%s' not loadable: %w", s.Link.FlowID, err)
					}
					target = nil
				}
				linked[s.Link.FlowID] = target
			}
			where := b.ID + "." + s.ID
			if target == nil {
				c.errorf(CodeUnknownLinkTarget, "link step %s points at unknown flow %q", where, s.Link.FlowID)
				continue
			}
			if s.Link.BlockID != "" {
				if _, ok := target.Block(s.Link.BlockID); !ok {
					c.errorf(CodeUnknownLinkTarget, "link step %s points at unknown block %q of flow %q", where, s.Link.BlockID, s.Link.FlowID)
				}
			}
		}
	}
	return c, nil
}
