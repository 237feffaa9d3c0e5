package usecase

import (
	"fmt"
	"strings"
	"sync/atomic"

	"kbrag/internal/adapter/cache"
	"kbrag/internal/adapter/retriever"
	"kbrag/internal/domain"
	"kbrag/internal/logger"
	"kbrag/internal/port"
)

// KnowledgeBase owns the corpus lifecycle: it loads sources, chunks them,
// installs the resulting corpus and answers context queries against it.
type KnowledgeBase struct {
	loader    port.Loader
	chunker   port.Chunker
	retriever *retriever.LexicalRetriever
	search    port.Retriever
	cache     *cache.QueryCache
	topK      int
	stats     atomic.Pointer[domain.Stats]
	log       logger.Logger
}

// NewKnowledgeBase wires the pipeline. qc may be nil to disable caching.
func NewKnowledgeBase(
	loader port.Loader,
	chunker port.Chunker,
	lexical *retriever.LexicalRetriever,
	qc *cache.QueryCache,
	topK int,
	log logger.Logger,
) *KnowledgeBase {
	if log == nil {
		log = logger.Discard()
	}
	var search port.Retriever = lexical
	if qc != nil {
		search = cache.NewCachedRetriever(lexical, qc)
	}
	kb := &KnowledgeBase{
		loader:    loader,
		chunker:   chunker,
		retriever: lexical,
		search:    search,
		cache:     qc,
		topK:      topK,
		log:       log,
	}
	kb.stats.Store(&domain.Stats{})
	return kb
}

// Load reads the sources under root and initializes the corpus from the
// ones that could be read. Failed sources are logged and returned.
func (kb *KnowledgeBase) Load(root string, progress port.ProgressFunc) (bool, []domain.LoadError) {
	kb.log.Info("loading documents", "root", root)

	docs, failures := kb.loader.Load(root, progress)
	for _, f := range failures {
		kb.log.Warn("failed to load document", "name", f.Name, "err", f.Err)
	}
	for _, d := range docs {
		kb.log.Debug("loaded document", "name", d.Name, "chars", len([]rune(d.Content)))
	}

	return kb.Initialize(docs), failures
}

// Initialize replaces the corpus with one built from docs. It returns false
// when docs is empty, in which case the corpus becomes empty.
func (kb *KnowledgeBase) Initialize(docs []domain.Document) bool {
	if len(docs) == 0 {
		kb.install(retriever.NewCorpus(nil), domain.Stats{})
		kb.log.Warn("no documents loaded, knowledge base is empty")
		return false
	}

	var text strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&text, "\n\n--- %s ---\n\n%s", d.Name, d.Content)
	}

	chunks := kb.chunker.Chunk(text.String())

	stats := domain.Stats{Documents: len(docs), Chunks: len(chunks)}
	if len(chunks) > 0 {
		total := 0
		for _, c := range chunks {
			total += c.Length
		}
		stats.AvgChunkLen = float64(total) / float64(len(chunks))
		stats.SourceTag = chunks[0].SourceTag
	}

	kb.install(retriever.NewCorpus(chunks), stats)
	kb.log.Info("knowledge base initialized", "documents", stats.Documents, "chunks", stats.Chunks)
	return true
}

func (kb *KnowledgeBase) install(corpus *retriever.Corpus, stats domain.Stats) {
	kb.retriever.Swap(corpus)
	kb.stats.Store(&stats)
	if kb.cache != nil {
		kb.cache.Invalidate()
	}
}

// Retrieve returns the ranked chunks for query. k <= 0 uses the configured
// top-k.
func (kb *KnowledgeBase) Retrieve(query string, k int) []domain.ScoredChunk {
	if k <= 0 {
		k = kb.topK
	}
	return kb.search.Retrieve(query, k)
}

// GetRelevantContext retrieves and assembles the context for query.
func (kb *KnowledgeBase) GetRelevantContext(query string, k int) string {
	return Assemble(kb.Retrieve(query, k))
}

func (kb *KnowledgeBase) Stats() domain.Stats {
	return *kb.stats.Load()
}

// Ready reports whether the corpus holds any chunks.
func (kb *KnowledgeBase) Ready() bool {
	return kb.retriever.Corpus().Len() > 0
}
