package retriever

import "kbrag/internal/adapter/analyzer"

// JaccardScore returns the word-set Jaccard similarity of query and text.
// An empty query scores 0 regardless of text.
func JaccardScore(query, text string) float64 {
	return jaccard(analyzer.WordSet(query), analyzer.WordSet(text))
}

func jaccard(query, text analyzer.Set) float64 {
	if len(query) == 0 {
		return 0.0
	}

	intersection := query.Intersect(text)
	union := len(query) + len(text) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}
