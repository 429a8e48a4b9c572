package domain

// SessionStatus is the traversal state of a session.
type SessionStatus string

const (
	StatusAwaitingStart SessionStatus = "awaiting_start" // Created, nothing displayed yet
	StatusAdvancing     SessionStatus = "advancing"      // At least one block displayed
	StatusCompleted     SessionStatus = "completed"      // Sink state reached
)

// Outcome describes what a single advance request did.
type Outcome string

const (
	// OutcomeDisplayed means one block was appended to the history.
	OutcomeDisplayed Outcome = "displayed"
	// OutcomeIgnored means the request referenced an unknown block; nothing changed.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeCompleted means the session reached its terminal state.
	OutcomeCompleted Outcome = "completed"
)

// DisplayedEntry records one block shown in the session.
// Entries are appended once and never mutated.
type DisplayedEntry struct {
	Block          Block  `json:"block"`
	StartStepIndex int    `json:"start_step_index"`
	GraphID        string `json:"graph_id,omitempty"`
}

// ContinuationEntry is an edge that belongs to another (embedding) flow graph,
// resolved once the active graph runs out of edges.
type ContinuationEntry struct {
	Graph  *FlowGraph
	EdgeID string
}

// StartOptions configures how a session enters its flow.
type StartOptions struct {
	// StartBlockID enters that block directly. When empty, the flow starts by
	// following the outgoing edge of its first step.
	StartBlockID string

	// Predefined binds variables by case-insensitive name before the first block is shown.
	Predefined map[string]string
}

// SessionSnapshot is a serializable view of a session for adapters (HTTP, MCP, CLI).
type SessionSnapshot struct {
	SessionID     string            `json:"session_id"`
	FlowID        string            `json:"flow_id"`
	ActiveFlowID  string            `json:"active_flow_id"`
	Status        SessionStatus     `json:"status"`
	History       []HistoryItem     `json:"history"`
	Variables     map[string]string `json:"variables,omitempty"`
	Continuations int               `json:"continuations"`
}

// HistoryItem is the compact form of a DisplayedEntry.
type HistoryItem struct {
	BlockID        string `json:"block_id"`
	Title          string `json:"title,omitempty"`
	StartStepIndex int    `json:"start_step_index"`
	GraphID        string `json:"graph_id,omitempty"`
}
