package usecase

import (
	"testing"

	"kbrag/internal/domain"
)

func TestAssemble_Empty(t *testing.T) {
	if got := Assemble(nil); got != "No relevant information found in the knowledge base." {
		t.Errorf("unexpected sentinel: %q", got)
	}
}

func TestAssemble_Formats(t *testing.T) {
	chunks := []domain.ScoredChunk{
		{Chunk: domain.Chunk{ID: 0, Text: "OwlVest offers investment services"}, Score: 0.5},
		{Chunk: domain.Chunk{ID: 3, Text: "Staking is available"}, Score: 1.0 / 3.0},
	}

	want := "[Relevance: 0.500]\nOwlVest offers investment services" +
		"\n\n---\n\n" +
		"[Relevance: 0.333]\nStaking is available"
	if got := Assemble(chunks); got != want {
		t.Errorf("unexpected context:\n got: %q\nwant: %q", got, want)
	}
}

func TestAssemble_Single(t *testing.T) {
	got := Assemble([]domain.ScoredChunk{{Chunk: domain.Chunk{Text: "x"}, Score: 0.0125}})
	if got != "[Relevance: 0.013]\nx" {
		t.Errorf("unexpected formatting: %q", got)
	}
}
