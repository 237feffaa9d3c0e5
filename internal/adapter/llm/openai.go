package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// PlaceholderAPIKey is the value shipped in sample env files; it counts
// as not configured.
const PlaceholderAPIKey = "your_openrouter_api_key_here"

var (
	ErrNotConfigured = errors.New("llm api key is not configured")
	ErrEmptyResponse = errors.New("llm returned no choices")
)

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client talks to any OpenAI-compatible chat completions endpoint, such as
// OpenRouter.
type Client struct {
	client openai.Client
	opts   Options
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithRequestTimeout(opts.Timeout),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}

	return &Client{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
	}
}

func (c *Client) Configured() bool {
	return c.opts.APIKey != "" && c.opts.APIKey != PlaceholderAPIKey
}

func (c *Client) ModelName() string {
	return c.opts.Model
}

// Generate sends prompt as a single user message and returns the first
// choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.opts.Temperature),
		MaxTokens:   openai.Int(int64(c.opts.MaxTokens)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("llm api error (status %d): %w", apiErr.StatusCode, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("llm request timed out after %s: %w", c.opts.Timeout, err)
		}
		return "", fmt.Errorf("llm request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
