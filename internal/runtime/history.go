package runtime

import "github.com/aretw0/botflow/pkg/domain"

// History is the append-only log of blocks shown in a session.
type History struct {
	entries []domain.DisplayedEntry
}

// Append records a displayed block.
func (h *History) Append(entry domain.DisplayedEntry) {
	h.entries = append(h.entries, entry)
}

// Len returns the number of displayed entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the log so callers cannot rewrite it.
func (h *History) Entries() []domain.DisplayedEntry {
	out := make([]domain.DisplayedEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Last returns the most recently displayed entry.
func (h *History) Last() (domain.DisplayedEntry, bool) {
	if len(h.entries) == 0 {
		return domain.DisplayedEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}
