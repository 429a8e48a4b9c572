package domain

// Locator addresses a block, and optionally one of its steps.
type Locator struct {
	BlockID string `json:"block_id" yaml:"block_id"`
	StepID  string `json:"step_id,omitempty" yaml:"step_id,omitempty"`
}

// Edge is a directed link from a source step to a target block.
// When To.StepID is empty, traversal begins at the first step of the target block.
type Edge struct {
	ID   string  `json:"id" yaml:"id"`
	From Locator `json:"from" yaml:"from"`
	To   Locator `json:"to" yaml:"to"`
}

// Placeholder values carried by the edge announced on direct block entry.
// They reference no real graph entity.
const (
	SyntheticEdgeID  = "edgeId"
	SyntheticBlockID = "block"
	SyntheticStepID  = "step"
)

// SyntheticEdge builds the edge announced when a block is entered directly
// instead of through a real edge.
func SyntheticEdge(blockID string) Edge {
	return Edge{
		ID:   SyntheticEdgeID,
		From: Locator{BlockID: SyntheticBlockID, StepID: SyntheticStepID},
		To:   Locator{BlockID: blockID},
	}
}

// IsSynthetic reports whether the edge was produced by direct block entry.
func (e Edge) IsSynthetic() bool {
	return e.ID == SyntheticEdgeID && e.From.BlockID == SyntheticBlockID
}
