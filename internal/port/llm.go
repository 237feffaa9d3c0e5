package port

import "context"

// LLM represents a language model for text generation.
type LLM interface {
	// Generate generates text based on the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Configured reports whether the model has usable credentials.
	Configured() bool

	// ModelName returns the name of the model.
	ModelName() string
}
