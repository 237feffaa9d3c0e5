package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

type cacheKey struct {
	gen   uint64
	query string
	topK  int
}

// QueryCache memoizes retrieval results. Entries are keyed by corpus
// generation, so results computed before Invalidate are never served after.
type QueryCache struct {
	lru *expirable.LRU[cacheKey, []domain.ScoredChunk]
	gen atomic.Uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		lru: expirable.NewLRU[cacheKey, []domain.ScoredChunk](maxSize, nil, ttl),
	}
}

// keyAt captures the current generation for query and topK.
func (c *QueryCache) keyAt(query string, topK int) cacheKey {
	return cacheKey{gen: c.gen.Load(), query: query, topK: topK}
}

func (c *QueryCache) getAt(key cacheKey) ([]domain.ScoredChunk, bool) {
	return c.lru.Get(key)
}

func (c *QueryCache) putAt(key cacheKey, results []domain.ScoredChunk) {
	c.lru.Add(key, results)
}

// Invalidate drops every cached result. Call it whenever the corpus changes.
func (c *QueryCache) Invalidate() {
	c.gen.Add(1)
	c.lru.Purge()
}

type CachedRetriever struct {
	retriever port.Retriever
	cache     *QueryCache
}

func NewCachedRetriever(retriever port.Retriever, cache *QueryCache) *CachedRetriever {
	return &CachedRetriever{
		retriever: retriever,
		cache:     cache,
	}
}

func (r *CachedRetriever) Retrieve(query string, k int) []domain.ScoredChunk {
	// capture the key first so a concurrent Invalidate cannot file a stale
	// result under the new generation.
	key := r.cache.keyAt(query, k)
	if results, hit := r.cache.getAt(key); hit {
		return results
	}

	results := r.retriever.Retrieve(query, k)
	r.cache.putAt(key, results)

	return results
}
