package chunker

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"kbrag/internal/domain"
)

// SentenceChunker packs sentence-like units into overlapping chunks of
// roughly size characters.
type SentenceChunker struct {
	size      int
	overlap   int
	sourceTag string
}

func NewSentenceChunker(size, overlap int, sourceTag string) (*SentenceChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	return &SentenceChunker{
		size:      size,
		overlap:   overlap,
		sourceTag: sourceTag,
	}, nil
}

// Chunk splits text into chunks with ids 0..n-1. Sentences are never cut:
// a sentence longer than the chunk size becomes a chunk of its own.
func (c *SentenceChunker) Chunk(text string) []domain.Chunk {
	var chunks []domain.Chunk

	// buffer always starts with the separator space, and its length in
	// runes is what the size check sees.
	var buffer strings.Builder
	bufLen := 0

	for _, unit := range Sentences(text) {
		unitLen := utf8.RuneCountInString(unit)

		if bufLen+unitLen > c.size && bufLen > 0 {
			closed := buffer.String()
			chunks = append(chunks, c.newChunk(len(chunks), closed))

			carry := ""
			if c.overlap > 0 {
				carry = lastRunes(closed, c.overlap)
			}
			buffer.Reset()
			buffer.WriteString(carry)
			bufLen = utf8.RuneCountInString(carry)
		}

		buffer.WriteByte(' ')
		buffer.WriteString(unit)
		bufLen += 1 + unitLen
	}

	if strings.TrimSpace(buffer.String()) != "" {
		chunks = append(chunks, c.newChunk(len(chunks), buffer.String()))
	}

	return chunks
}

func (c *SentenceChunker) newChunk(id int, buffer string) domain.Chunk {
	text := strings.TrimSpace(buffer)
	return domain.Chunk{
		ID:        id,
		Text:      text,
		Length:    utf8.RuneCountInString(text),
		SourceTag: c.sourceTag,
	}
}

// Normalize collapses every whitespace run to a single space and trims the
// result. The information separators U+001C..U+001F count as whitespace.
func Normalize(text string) string {
	return strings.Join(strings.FieldsFunc(text, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || ('\x1c' <= r && r <= '\x1f')
}

// Sentences normalizes text and splits it on runs of '.', '!' and '?',
// dropping units that are empty after trimming.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	units := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			units = append(units, p)
		}
	}
	return units
}

// lastRunes returns the final n characters of s, or s when it is shorter.
func lastRunes(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if n >= count {
		return s
	}
	skip := count - n
	for i := range s {
		if skip == 0 {
			return s[i:]
		}
		skip--
	}
	return ""
}
