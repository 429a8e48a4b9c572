package runtime

import "github.com/aretw0/botflow/pkg/domain"

// ContinuationQueue holds edges of embedding flows, consumed oldest first
// once the active flow has no edge left to follow.
type ContinuationQueue struct {
	entries []domain.ContinuationEntry
}

// Enqueue appends an entry at the back of the queue.
func (q *ContinuationQueue) Enqueue(entry domain.ContinuationEntry) {
	q.entries = append(q.entries, entry)
}

// DequeueNext removes and returns the oldest entry.
func (q *ContinuationQueue) DequeueNext() (domain.ContinuationEntry, bool) {
	if len(q.entries) == 0 {
		return domain.ContinuationEntry{}, false
	}
	next := q.entries[0]
	q.entries[0] = domain.ContinuationEntry{}
	q.entries = q.entries[1:]
	return next, true
}

// Len returns the number of pending continuations.
func (q *ContinuationQueue) Len() int {
	return len(q.entries)
}
