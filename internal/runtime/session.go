package runtime

import (
	"time"

	"github.com/aretw0/botflow/pkg/domain"
)

// Session owns everything one conversation mutates: the active graph reference,
// the variable store, the continuation queue and the visible history.
// A Session is not safe for concurrent use; see pkg/session for serialised access.
type Session struct {
	id        string
	createdAt time.Time
	status    domain.SessionStatus
	started   bool

	root   *domain.FlowGraph
	active *domain.FlowGraph

	vars    *VariableStore
	queue   *ContinuationQueue
	history *History
}

// NewSession creates a session over a private copy of graph.
func NewSession(id string, graph *domain.FlowGraph) *Session {
	g := graph.Clone()
	if g == nil {
		g = &domain.FlowGraph{}
	}
	return &Session{
		id:        id,
		createdAt: time.Now(),
		status:    domain.StatusAwaitingStart,
		root:      g,
		active:    g,
		vars:      NewVariableStore(g.Variables),
		queue:     &ContinuationQueue{},
		history:   &History{},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Status returns the traversal state.
func (s *Session) Status() domain.SessionStatus { return s.status }

// Completed reports whether the session reached its terminal state.
func (s *Session) Completed() bool { return s.status == domain.StatusCompleted }

// RootGraph returns the flow the session was created for.
func (s *Session) RootGraph() *domain.FlowGraph { return s.root }

// ActiveGraph returns the flow edges are currently resolved against.
func (s *Session) ActiveGraph() *domain.FlowGraph { return s.active }

// Variables returns the session's variable store.
func (s *Session) Variables() *VariableStore { return s.vars }

// Continuations returns the session's continuation queue.
func (s *Session) Continuations() *ContinuationQueue { return s.queue }

// History returns a copy of the visible-history log.
func (s *Session) History() []domain.DisplayedEntry { return s.history.Entries() }

// Last returns the most recently displayed block.
func (s *Session) Last() (domain.DisplayedEntry, bool) { return s.history.Last() }

// Snapshot renders the session into its serializable form.
func (s *Session) Snapshot() domain.SessionSnapshot {
	entries := s.history.Entries()
	items := make([]domain.HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = domain.HistoryItem{
			BlockID:        e.Block.ID,
			Title:          e.Block.Title,
			StartStepIndex: e.StartStepIndex,
			GraphID:        e.GraphID,
		}
	}
	return domain.SessionSnapshot{
		SessionID:     s.id,
		FlowID:        s.root.ID,
		ActiveFlowID:  s.active.ID,
		Status:        s.status,
		History:       items,
		Variables:     s.vars.Values(),
		Continuations: s.queue.Len(),
	}
}
