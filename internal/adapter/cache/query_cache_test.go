package cache

import (
	"testing"
	"time"

	"kbrag/internal/domain"
)

type countingRetriever struct {
	calls   int
	results []domain.ScoredChunk
}

func (r *countingRetriever) Retrieve(query string, k int) []domain.ScoredChunk {
	r.calls++
	return r.results
}

func TestQueryCache_PutGet(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	results := []domain.ScoredChunk{{Chunk: domain.Chunk{ID: 1, Text: "owl"}, Score: 0.5}}
	c.putAt(c.keyAt("owl", 3), results)

	got, ok := c.getAt(c.keyAt("owl", 3))
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Chunk.ID != 1 {
		t.Errorf("unexpected cached results: %+v", got)
	}

	if _, ok := c.getAt(c.keyAt("owl", 4)); ok {
		t.Error("different k must miss")
	}
}

func TestQueryCache_Invalidate(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	stale := c.keyAt("owl", 3)
	c.putAt(stale, nil)

	c.Invalidate()

	if _, ok := c.getAt(c.keyAt("owl", 3)); ok {
		t.Error("expected miss after invalidate")
	}
	if c.lru.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.lru.Len())
	}

	// a result computed before Invalidate lands under the old generation
	c.putAt(stale, nil)
	if _, ok := c.getAt(c.keyAt("owl", 3)); ok {
		t.Error("stale result must not be served under the new generation")
	}
}

func TestQueryCache_Eviction(t *testing.T) {
	c := NewQueryCache(2, time.Minute)
	c.putAt(c.keyAt("a", 1), nil)
	c.putAt(c.keyAt("b", 1), nil)
	c.putAt(c.keyAt("c", 1), nil)

	if c.lru.Len() != 2 {
		t.Errorf("expected size 2, got %d", c.lru.Len())
	}
	if _, ok := c.getAt(c.keyAt("a", 1)); ok {
		t.Error("oldest entry should be evicted")
	}
}

func TestQueryCache_TTL(t *testing.T) {
	c := NewQueryCache(10, 20*time.Millisecond)
	c.putAt(c.keyAt("owl", 3), nil)

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.getAt(c.keyAt("owl", 3)); ok {
		t.Error("expected entry to expire")
	}
}

func TestCachedRetriever(t *testing.T) {
	inner := &countingRetriever{results: []domain.ScoredChunk{{Score: 0.2}}}
	c := NewQueryCache(10, time.Minute)
	r := NewCachedRetriever(inner, c)

	r.Retrieve("owl", 3)
	r.Retrieve("owl", 3)
	if inner.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", inner.calls)
	}

	c.Invalidate()
	r.Retrieve("owl", 3)
	if inner.calls != 2 {
		t.Errorf("expected backend call after invalidate, got %d", inner.calls)
	}
}
