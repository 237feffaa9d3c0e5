package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	"kbrag/internal/adapter/cache"
	"kbrag/internal/adapter/chunker"
	"kbrag/internal/adapter/retriever"
	"kbrag/internal/domain"
	"kbrag/internal/port"
)

type stubLoader struct {
	docs     []domain.Document
	failures []domain.LoadError
}

func (l *stubLoader) Load(root string, progress port.ProgressFunc) ([]domain.Document, []domain.LoadError) {
	total := len(l.docs) + len(l.failures)
	for i := 0; i < total; i++ {
		if progress != nil {
			progress(i+1, total, "")
		}
	}
	return l.docs, l.failures
}

func newKB(t *testing.T, loader port.Loader, size, overlap int, qc *cache.QueryCache) *KnowledgeBase {
	t.Helper()
	ch, err := chunker.NewSentenceChunker(size, overlap, "owlvest_data")
	if err != nil {
		t.Fatal(err)
	}
	return NewKnowledgeBase(loader, ch, retriever.NewLexicalRetriever(nil), qc, 3, nil)
}

func TestKnowledgeBase_Pipeline(t *testing.T) {
	kb := newKB(t, nil, 1000, 200, nil)

	ok := kb.Initialize([]domain.Document{{
		Name:    "owlvest_master_data.txt",
		Content: "OwlVest offers investment services.\nThe team meets weekly.",
	}})
	if !ok {
		t.Fatal("expected initialization to succeed")
	}

	stats := kb.Stats()
	if stats.Documents != 1 || stats.Chunks != 1 || stats.SourceTag != "owlvest_data" {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if !kb.Ready() {
		t.Error("expected knowledge base to be ready")
	}

	want := "[Relevance: 0.200]\n--- owlvest_master_data txt --- OwlVest offers investment services The team meets weekly"
	if got := kb.GetRelevantContext("OwlVest services", 0); got != want {
		t.Errorf("unexpected context:\n got: %q\nwant: %q", got, want)
	}
}

func TestKnowledgeBase_RanksChunks(t *testing.T) {
	kb := newKB(t, nil, 40, 0, nil)
	kb.Initialize([]domain.Document{{
		Name:    "facts",
		Content: "OwlVest offers investment services. The team meets weekly on Fridays.",
	}})

	results := kb.Retrieve("OwlVest investment services", 3)
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if !strings.Contains(results[0].Chunk.Text, "OwlVest offers investment services") {
		t.Errorf("expected the services chunk first, got %q", results[0].Chunk.Text)
	}
	for _, r := range results {
		if strings.Contains(r.Chunk.Text, "Fridays") && !strings.Contains(r.Chunk.Text, "OwlVest") {
			t.Errorf("unrelated chunk should fall below the threshold: %+v", r)
		}
	}
}

func TestKnowledgeBase_EmptyQuery(t *testing.T) {
	kb := newKB(t, nil, 1000, 200, nil)
	kb.Initialize([]domain.Document{{Name: "a", Content: "OwlVest offers investment services."}})

	if got := kb.GetRelevantContext("", 3); got != NoContextMessage {
		t.Errorf("expected sentinel for empty query, got %q", got)
	}
}

func TestKnowledgeBase_NoDocuments(t *testing.T) {
	loader := &stubLoader{failures: []domain.LoadError{
		{Name: "owlvest_master_data.txt", Err: errors.New("missing")},
	}}
	kb := newKB(t, loader, 1000, 200, nil)

	ok, failures := kb.Load("/data", nil)
	if ok {
		t.Error("expected initialization to report failure")
	}
	if len(failures) != 1 {
		t.Errorf("expected load failure to be returned, got %v", failures)
	}
	if kb.Ready() {
		t.Error("knowledge base must not be ready")
	}
	if results := kb.Retrieve("anything", 3); len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
	if got := kb.GetRelevantContext("anything", 3); got != NoContextMessage {
		t.Errorf("expected sentinel, got %q", got)
	}
}

func TestKnowledgeBase_PartialLoad(t *testing.T) {
	loader := &stubLoader{
		docs: []domain.Document{{Name: "website_data.txt", Content: "OwlVest runs a staking program."}},
		failures: []domain.LoadError{
			{Name: "clean_whitepaper.txt", Err: errors.New("permission denied")},
		},
	}
	kb := newKB(t, loader, 1000, 200, nil)

	var calls int
	ok, failures := kb.Load("/data", func(done, total int, name string) { calls++ })
	if !ok {
		t.Fatal("expected initialization from the remaining document")
	}
	if len(failures) != 1 || calls != 2 {
		t.Errorf("expected 1 failure and 2 progress calls, got %d and %d", len(failures), calls)
	}
	if got := kb.GetRelevantContext("staking program", 0); got == NoContextMessage {
		t.Error("expected context from the loaded document")
	}
}

func TestKnowledgeBase_ReinitializeReplacesCorpus(t *testing.T) {
	qc := cache.NewQueryCache(16, time.Minute)
	kb := newKB(t, nil, 1000, 200, qc)

	kb.Initialize([]domain.Document{{Name: "a", Content: "Owls hunt at night."}})
	if got := kb.GetRelevantContext("foxes den", 0); got != NoContextMessage {
		t.Fatalf("expected no match before reload, got %q", got)
	}

	kb.Initialize([]domain.Document{{Name: "b", Content: "Foxes live in a den."}})
	if got := kb.GetRelevantContext("foxes den", 0); got == NoContextMessage {
		t.Error("cached miss served after the corpus was replaced")
	}
	if got := kb.GetRelevantContext("owls hunt", 0); got != NoContextMessage {
		t.Errorf("old corpus still visible: %q", got)
	}

	if kb.Initialize(nil) {
		t.Error("expected false for empty reload")
	}
	if kb.Ready() {
		t.Error("failed reload should leave an empty corpus")
	}
}
