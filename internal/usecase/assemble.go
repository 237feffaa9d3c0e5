package usecase

import (
	"fmt"
	"strings"

	"kbrag/internal/domain"
)

// NoContextMessage is returned in place of context when nothing relevant
// was retrieved.
const NoContextMessage = "No relevant information found in the knowledge base."

const contextSeparator = "\n\n---\n\n"

// Assemble formats ranked chunks into the context handed to the LLM.
func Assemble(chunks []domain.ScoredChunk) string {
	if len(chunks) == 0 {
		return NoContextMessage
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Relevance: %.3f]\n%s", c.Score, c.Chunk.Text)
	}
	return strings.Join(parts, contextSeparator)
}
