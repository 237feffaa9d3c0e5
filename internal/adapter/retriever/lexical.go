package retriever

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"kbrag/internal/adapter/analyzer"
	"kbrag/internal/domain"
	"kbrag/internal/logger"
)

// MinScore is the relevance floor; results must score strictly above it.
const MinScore = 0.01

var (
	ErrNoCorpus = errors.New("no corpus loaded")
	ErrInternal = errors.New("internal retrieval fault")
)

type entry struct {
	chunk domain.Chunk
	terms analyzer.Set
}

// Corpus is an immutable, ordered collection of chunks together with the
// word set of each chunk.
type Corpus struct {
	entries []entry
}

// NewCorpus indexes chunks in the given order.
func NewCorpus(chunks []domain.Chunk) *Corpus {
	entries := make([]entry, len(chunks))
	for i, ch := range chunks {
		entries[i] = entry{chunk: ch, terms: analyzer.WordSet(ch.Text)}
	}
	return &Corpus{entries: entries}
}

// Len returns the number of chunks. A nil corpus is empty.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// LexicalRetriever ranks every chunk of its corpus by Jaccard similarity.
// The corpus is replaced wholesale with Swap, so reads never lock.
type LexicalRetriever struct {
	corpus atomic.Pointer[Corpus]
	score  func(query, text analyzer.Set) float64
	log    logger.Logger
}

func NewLexicalRetriever(log logger.Logger) *LexicalRetriever {
	if log == nil {
		log = logger.Discard()
	}
	return &LexicalRetriever{
		score: jaccard,
		log:   log,
	}
}

// Swap installs c as the current corpus and returns the previous one.
func (r *LexicalRetriever) Swap(c *Corpus) *Corpus {
	return r.corpus.Swap(c)
}

// Corpus returns the current corpus, possibly nil.
func (r *LexicalRetriever) Corpus() *Corpus {
	return r.corpus.Load()
}

// Search scores all chunks against query and returns at most k of them,
// best first, dropping any that score MinScore or less. Chunks with equal
// scores keep corpus order. It returns ErrNoCorpus when there is nothing
// to search and wraps ErrInternal when scoring fails.
func (r *LexicalRetriever) Search(query string, k int) (results []domain.ScoredChunk, err error) {
	defer func() {
		if p := recover(); p != nil {
			results = nil
			err = fmt.Errorf("%w: %v", ErrInternal, p)
		}
	}()

	corpus := r.corpus.Load()
	if corpus.Len() == 0 {
		return nil, ErrNoCorpus
	}
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	queryTerms := analyzer.WordSet(query)

	scored := make([]domain.ScoredChunk, len(corpus.entries))
	for i, e := range corpus.entries {
		scored[i] = domain.ScoredChunk{
			Chunk: e.chunk,
			Score: r.score(queryTerms, e.terms),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	results = make([]domain.ScoredChunk, 0, len(scored))
	for _, s := range scored {
		if s.Score > MinScore {
			results = append(results, s)
		}
	}

	return results, nil
}

// Retrieve is Search with every failure reported as an empty result.
func (r *LexicalRetriever) Retrieve(query string, k int) []domain.ScoredChunk {
	results, err := r.Search(query, k)
	if err != nil {
		if !errors.Is(err, ErrNoCorpus) {
			r.log.Warn("search failed", "err", err)
		}
		return []domain.ScoredChunk{}
	}
	return results
}
