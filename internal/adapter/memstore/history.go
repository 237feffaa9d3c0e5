package memstore

import (
	"sync"

	"kbrag/internal/domain"
)

// History is an in-process chat history. A maxEntries above zero keeps
// only the most recent turns.
type History struct {
	mu         sync.RWMutex
	entries    []domain.ChatEntry
	maxEntries int
}

func NewHistory(maxEntries int) *History {
	return &History{maxEntries: maxEntries}
}

func (h *History) Append(entry domain.ChatEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	if h.maxEntries > 0 && len(h.entries) > h.maxEntries {
		h.entries = append([]domain.ChatEntry(nil), h.entries[len(h.entries)-h.maxEntries:]...)
	}
	return nil
}

func (h *History) List(limit int) ([]domain.ChatEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	start := 0
	if limit > 0 && len(h.entries) > limit {
		start = len(h.entries) - limit
	}
	out := make([]domain.ChatEntry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out, nil
}

func (h *History) Count() (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries), nil
}

func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	return nil
}

func (h *History) Close() error {
	return nil
}
