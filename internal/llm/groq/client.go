package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/telemetry"
)

const (
	// BaseURL is Groq's OpenAI-compatible endpoint.
	BaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is used when no model is configured.
	DefaultModel = "llama-3.3-70b-versatile"

	defaultTimeout = 60 * time.Second
)

// Client implements llm.Completer against Groq chat completions.
type Client struct {
	api     *openai.Client
	apiKey  string
	model   string
	timeout time.Duration
}

// NewClient constructs a Groq client. An empty apiKey yields a client whose
// Generate reports llm.ErrNotConfigured.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return newClient(apiKey, model, timeout, BaseURL)
}

func newClient(apiKey, model string, timeout time.Duration, baseURL string) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Model reports the model used when a request does not name one.
func (c *Client) Model() string { return c.model }

// Generate sends one chat completion and returns the first choice's content.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	if c.apiKey == "" {
		return "", llm.ErrNotConfigured
	}
	model := req.Model
	if strings.TrimSpace(model) == "" {
		model = c.model
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Params.Temperature,
		TopP:        req.Params.TopP,
		MaxTokens:   req.Params.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: groq request timeout after %s: %v", llm.ErrCompletion, c.timeout, err)
		}
		return "", fmt.Errorf("%w: groq: %v", llm.ErrCompletion, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: groq response missing choices", llm.ErrCompletion)
	}

	telemetry.Info("llm.response", map[string]any{
		"provider":          "groq",
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	})
	return resp.Choices[0].Message.Content, nil
}

var _ llm.Completer = (*Client)(nil)
