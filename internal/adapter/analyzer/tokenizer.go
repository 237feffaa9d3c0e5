package analyzer

import (
	"strings"
	"unicode"
)

// Set is a collection of unique lower-cased words.
type Set map[string]struct{}

// WordSet returns the unique lower-cased words of text. A word is a
// maximal run of letters, numbers and underscores.
func WordSet(text string) Set {
	words := splitWords(text)
	set := make(Set, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Intersect returns the number of words present in both sets.
func (s Set) Intersect(other Set) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for w := range small {
		if _, ok := large[w]; ok {
			n++
		}
	}
	return n
}

// splitWords splits text into words using unicode word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}
