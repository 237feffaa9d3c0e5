package domain

import "time"

// Document is one successfully loaded knowledge-base source.
type Document struct {
	Name    string
	Content string
}

// Chunk is an immutable slice of the normalized corpus text.
type Chunk struct {
	ID        int    `json:"chunk_id"`
	Text      string `json:"text"`
	Length    int    `json:"length"`
	SourceTag string `json:"type"`
}

type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// LoadError records a source that could not be read.
type LoadError struct {
	Name string
	Err  error
}

func (e LoadError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e LoadError) Unwrap() error {
	return e.Err
}

type Stats struct {
	Documents   int     `json:"documents"`
	Chunks      int     `json:"chunks"`
	AvgChunkLen float64 `json:"avg_chunk_len"`
	SourceTag   string  `json:"source_tag"`
}

// ChatEntry is one question/answer turn kept in chat history.
type ChatEntry struct {
	ID          string    `json:"id"`
	Query       string    `json:"user"`
	Response    string    `json:"bot"`
	ContextUsed string    `json:"context_used"`
	CreatedAt   time.Time `json:"created_at"`
}
