package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"kbrag/internal/adapter/cache"
	"kbrag/internal/adapter/chunker"
	"kbrag/internal/adapter/fs"
	"kbrag/internal/adapter/llm"
	"kbrag/internal/adapter/memstore"
	"kbrag/internal/adapter/retriever"
	"kbrag/internal/adapter/store"
	"kbrag/internal/domain"
	"kbrag/internal/port"
	"kbrag/internal/usecase"
)

// newKnowledgeBase wires the retrieval pipeline from the loaded config.
func newKnowledgeBase() (*usecase.KnowledgeBase, error) {
	cfg := GetConfig()

	chk, err := chunker.NewSentenceChunker(cfg.Chunk.Size, cfg.Chunk.Overlap, cfg.Corpus.SourceTag)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	var qc *cache.QueryCache
	if cfg.Retrieve.CacheSize > 0 {
		qc = cache.NewQueryCache(cfg.Retrieve.CacheSize, cfg.Retrieve.CacheTTL)
	}

	loader := fs.NewLoader(cfg.Corpus.Files, cfg.Corpus.Includes, cfg.Corpus.Excludes)
	return usecase.NewKnowledgeBase(loader, chk, retriever.NewLexicalRetriever(log), qc, cfg.Retrieve.TopK, log), nil
}

// loadKnowledgeBase builds the knowledge base and loads the corpus. A
// partial or empty load is reported, not fatal.
func loadKnowledgeBase(progress port.ProgressFunc) (*usecase.KnowledgeBase, []domain.LoadError, error) {
	kb, err := newKnowledgeBase()
	if err != nil {
		return nil, nil, err
	}
	_, failed := kb.Load(GetConfig().CorpusDir(GetRootDir()), progress)
	return kb, failed, nil
}

func newLLMClient() *llm.Client {
	cfg := GetConfig()
	return llm.NewClient(llm.Options{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.APIKey(),
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
}

// newHistory opens the bbolt history when a path is configured and keeps
// it in memory otherwise.
func newHistory() (port.HistoryStore, error) {
	cfg := GetConfig()
	if cfg.History.Path == "" {
		return memstore.NewHistory(cfg.History.MaxEntries), nil
	}
	h, err := store.NewBoltHistory(cfg.History.Path, cfg.History.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat history: %w", err)
	}
	return h, nil
}

func newChat(kb *usecase.KnowledgeBase) (*usecase.ChatUseCase, port.HistoryStore, error) {
	history, err := newHistory()
	if err != nil {
		return nil, nil, err
	}
	chat, err := usecase.NewChatUseCase(kb, newLLMClient(), history, GetConfig().LLM.AssistantName, log)
	if err != nil {
		history.Close()
		return nil, nil, err
	}
	return chat, history, nil
}

// newProgress returns a progress callback drawing a bar once the total
// number of sources is known.
func newProgress(description string) port.ProgressFunc {
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(done, total int, name string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		bar.Set(done)

		if done > 0 && done < total {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-done)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", description, formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

func printLoadWarnings(failed []domain.LoadError) {
	if len(failed) == 0 {
		return
	}
	fmt.Printf("\nWarnings:\n")
	for _, e := range failed {
		fmt.Printf("  - %s\n", e)
	}
}
