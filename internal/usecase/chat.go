package usecase

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/google/uuid"

	"kbrag/internal/domain"
	"kbrag/internal/logger"
	"kbrag/internal/port"
)

//go:embed templates/chat_prompt.txt
var promptTemplates embed.FS

// ErrEmptyQuery is returned for blank questions.
var ErrEmptyQuery = errors.New("no query provided")

const contextPreviewRunes = 200

// ChatUseCase answers questions with retrieved context and records each
// turn in history.
type ChatUseCase struct {
	kb        *KnowledgeBase
	llm       port.LLM
	history   port.HistoryStore
	prompt    *template.Template
	assistant string
	log       logger.Logger
}

func NewChatUseCase(kb *KnowledgeBase, llm port.LLM, history port.HistoryStore, assistant string, log logger.Logger) (*ChatUseCase, error) {
	if log == nil {
		log = logger.Discard()
	}
	tmpl, err := template.ParseFS(promptTemplates, "templates/chat_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return &ChatUseCase{
		kb:        kb,
		llm:       llm,
		history:   history,
		prompt:    tmpl,
		assistant: assistant,
		log:       log,
	}, nil
}

type promptData struct {
	Assistant string
	Context   string
	Query     string
}

// BuildPrompt renders the LLM prompt. An empty context yields the bare
// query.
func (u *ChatUseCase) BuildPrompt(query, contextText string) (string, error) {
	if contextText == "" {
		return query, nil
	}

	var buf bytes.Buffer
	err := u.prompt.Execute(&buf, promptData{
		Assistant: u.assistant,
		Context:   contextText,
		Query:     query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// Ask answers query and appends the turn to history. Only an empty query
// is rejected; whitespace still reaches the model.
func (u *ChatUseCase) Ask(ctx context.Context, query string) (domain.ChatEntry, error) {
	if query == "" {
		return domain.ChatEntry{}, ErrEmptyQuery
	}

	contextText := u.kb.GetRelevantContext(query, 0)
	prompt, err := u.BuildPrompt(query, contextText)
	if err != nil {
		return domain.ChatEntry{}, err
	}

	start := time.Now()
	answer, err := u.llm.Generate(ctx, prompt)
	if err != nil {
		return domain.ChatEntry{}, fmt.Errorf("generate answer: %w", err)
	}
	u.log.Debug("llm answered", "model", u.llm.ModelName(), "elapsed", time.Since(start))

	entry := domain.ChatEntry{
		ID:          uuid.NewString(),
		Query:       query,
		Response:    answer,
		ContextUsed: preview(contextText, contextPreviewRunes),
		CreatedAt:   time.Now().UTC(),
	}
	if err := u.history.Append(entry); err != nil {
		u.log.Warn("failed to record chat history", "err", err)
	}
	return entry, nil
}

// History returns the most recent turns, oldest first.
func (u *ChatUseCase) History(limit int) ([]domain.ChatEntry, error) {
	return u.history.List(limit)
}

// ClearHistory drops every recorded turn.
func (u *ChatUseCase) ClearHistory() error {
	return u.history.Clear()
}

func (u *ChatUseCase) HistoryCount() int {
	n, err := u.history.Count()
	if err != nil {
		u.log.Warn("failed to count chat history", "err", err)
		return 0
	}
	return n
}

func (u *ChatUseCase) LLMConfigured() bool {
	return u.llm.Configured()
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
