package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"kbrag/internal/adapter/memstore"
	"kbrag/internal/domain"
)

type fakeLLM struct {
	prompts []string
	answer  string
	err     error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func (f *fakeLLM) Configured() bool  { return true }
func (f *fakeLLM) ModelName() string { return "fake" }

func newChat(t *testing.T, llm *fakeLLM) (*ChatUseCase, *memstore.History) {
	t.Helper()
	kb := newKB(t, nil, 1000, 200, nil)
	kb.Initialize([]domain.Document{{
		Name:    "owlvest_master_data.txt",
		Content: "OwlVest offers investment services. " + strings.Repeat("Filler words pad the chunk. ", 20),
	}})

	history := memstore.NewHistory(0)
	chat, err := NewChatUseCase(kb, llm, history, "OwlVest AI Assistant", nil)
	if err != nil {
		t.Fatal(err)
	}
	return chat, history
}

func TestChat_Ask(t *testing.T) {
	llm := &fakeLLM{answer: "OwlVest offers investment services."}
	chat, history := newChat(t, llm)

	entry, err := chat.Ask(context.Background(), "What services does OwlVest offer?")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Response != llm.answer || entry.ID == "" {
		t.Errorf("unexpected entry: %+v", entry)
	}

	if len(llm.prompts) != 1 {
		t.Fatalf("expected 1 llm call, got %d", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	for _, want := range []string{
		"You are OwlVest AI Assistant.",
		"Context Information:\n[Relevance: ",
		"User Question: What services does OwlVest offer?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if !strings.HasSuffix(entry.ContextUsed, "...") || utf8.RuneCountInString(entry.ContextUsed) != 203 {
		t.Errorf("expected a 200 character context preview, got %d: %q", utf8.RuneCountInString(entry.ContextUsed), entry.ContextUsed)
	}

	if n, _ := history.Count(); n != 1 {
		t.Errorf("expected 1 history entry, got %d", n)
	}
	if chat.HistoryCount() != 1 {
		t.Errorf("expected HistoryCount 1, got %d", chat.HistoryCount())
	}
}

func TestChat_EmptyQuery(t *testing.T) {
	llm := &fakeLLM{}
	chat, _ := newChat(t, llm)

	if _, err := chat.Ask(context.Background(), ""); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if len(llm.prompts) != 0 {
		t.Error("llm must not be called for an empty query")
	}
}

func TestChat_WhitespaceQueryReachesLLM(t *testing.T) {
	llm := &fakeLLM{answer: "How can I help?"}
	chat, history := newChat(t, llm)

	if _, err := chat.Ask(context.Background(), "   "); err != nil {
		t.Fatalf("whitespace query should be answered, got %v", err)
	}
	if len(llm.prompts) != 1 || !strings.Contains(llm.prompts[0], NoContextMessage) {
		t.Errorf("expected one prompt carrying the no-context message, got %q", llm.prompts)
	}
	if n, _ := history.Count(); n != 1 {
		t.Errorf("expected 1 history entry, got %d", n)
	}
}

func TestChat_ClearHistory(t *testing.T) {
	chat, _ := newChat(t, &fakeLLM{answer: "ok"})
	if _, err := chat.Ask(context.Background(), "OwlVest"); err != nil {
		t.Fatal(err)
	}

	if err := chat.ClearHistory(); err != nil {
		t.Fatal(err)
	}
	if chat.HistoryCount() != 0 {
		t.Errorf("expected empty history, got %d", chat.HistoryCount())
	}
}

func TestChat_LLMFailure(t *testing.T) {
	boom := errors.New("upstream down")
	llm := &fakeLLM{err: boom}
	chat, history := newChat(t, llm)

	_, err := chat.Ask(context.Background(), "OwlVest services")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped llm error, got %v", err)
	}
	if n, _ := history.Count(); n != 0 {
		t.Errorf("failed turns must not be recorded, got %d", n)
	}
}

func TestChat_NoMatchStillUsesSentinel(t *testing.T) {
	llm := &fakeLLM{answer: "I don't know."}
	chat, _ := newChat(t, llm)

	if _, err := chat.Ask(context.Background(), "zebra"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(llm.prompts[0], NoContextMessage) {
		t.Errorf("expected sentinel context in prompt:\n%s", llm.prompts[0])
	}
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	chat, _ := newChat(t, &fakeLLM{})
	got, err := chat.BuildPrompt("hello", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("expected bare query, got %q", got)
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 200); got != "short" {
		t.Errorf("unexpected preview %q", got)
	}
	if got := preview("ééééé", 3); got != "ééé..." {
		t.Errorf("unexpected rune preview %q", got)
	}
}
