package port

import "kbrag/internal/domain"

// Retriever returns the chunks most relevant to a query.
type Retriever interface {
	// Retrieve returns at most k ranked chunks. An empty result means no
	// corpus, no match above the threshold, or an internal fault.
	Retrieve(query string, k int) []domain.ScoredChunk
}
