package domain

// StepType constants define how a driver treats a step when it finishes.
const (
	// StepTypeText displays content and continues (soft step).
	StepTypeText = "text"
	// StepTypeInput collects a value from the user into VariableID (hard step).
	StepTypeInput = "input"
	// StepTypeCondition picks its outgoing edge from Branches.
	StepTypeCondition = "condition"
	// StepTypeLink hands control to another flow and resumes through OutgoingEdgeID.
	StepTypeLink = "link"
)

// Branch operators supported by condition steps.
const (
	OperatorEqual    = "equal"
	OperatorNotEqual = "not_equal"
	OperatorContains = "contains"
	OperatorIsSet    = "is_set"
	OperatorIsEmpty  = "is_empty"
)

// Block is a named group of ordered steps shown together.
type Block struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Step is the smallest unit of a block.
type Step struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Content is presentation payload (markdown for text steps, prompt for inputs).
	// The engine never interprets it.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// VariableID is the variable an input step writes to.
	VariableID string `json:"variable_id,omitempty" yaml:"variable_id,omitempty"`

	// OutgoingEdgeID is the edge to follow once the step completes.
	OutgoingEdgeID string `json:"outgoing_edge_id,omitempty" yaml:"outgoing_edge_id,omitempty"`

	// Branches are evaluated in order by condition steps; the first match wins.
	Branches []Branch `json:"branches,omitempty" yaml:"branches,omitempty"`

	// Link configures a link step.
	Link *LinkTarget `json:"link,omitempty" yaml:"link,omitempty"`
}

// Branch is one comparison of a condition step.
type Branch struct {
	VariableID     string `json:"variable_id" yaml:"variable_id"`
	Operator       string `json:"operator" yaml:"operator"`
	Value          string `json:"value,omitempty" yaml:"value,omitempty"`
	OutgoingEdgeID string `json:"outgoing_edge_id" yaml:"outgoing_edge_id"`
}

// LinkTarget points into another flow graph.
// An empty BlockID means "start where that flow starts".
type LinkTarget struct {
	FlowID  string `json:"flow_id" yaml:"flow_id"`
	BlockID string `json:"block_id,omitempty" yaml:"block_id,omitempty"`
}

// StepIndex returns the position of stepID within the block.
func (b *Block) StepIndex(stepID string) (int, bool) {
	for i := range b.Steps {
		if b.Steps[i].ID == stepID {
			return i, true
		}
	}
	return 0, false
}

// Step returns the step with the given ID.
func (b *Block) Step(stepID string) (*Step, bool) {
	idx, ok := b.StepIndex(stepID)
	if !ok {
		return nil, false
	}
	return &b.Steps[idx], true
}
