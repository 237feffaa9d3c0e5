package port

import "kbrag/internal/domain"

// HistoryStore keeps chat turns in insertion order.
type HistoryStore interface {
	Append(entry domain.ChatEntry) error

	// List returns the most recent entries, oldest first. limit <= 0 returns all.
	List(limit int) ([]domain.ChatEntry, error)

	Count() (int, error)

	Clear() error

	Close() error
}
