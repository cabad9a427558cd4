package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const defaultTimeout = 60 * time.Second

// Client implements llm.Completer against the Gemini API.
type Client struct {
	api     *genai.Client
	model   string
	timeout time.Duration
}

// NewClient constructs a Gemini client. An empty apiKey yields a client whose
// Generate reports llm.ErrNotConfigured.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	return newClient(ctx, apiKey, model, timeout, "")
}

func newClient(ctx context.Context, apiKey, model string, timeout time.Duration, baseURL string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{model: model, timeout: timeout}
	if strings.TrimSpace(apiKey) == "" {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	api, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.api = api
	return c, nil
}

// Model reports the model used when a request does not name one.
func (c *Client) Model() string { return c.model }

// Generate sends one generateContent call with the system message as the
// system instruction and returns the response text.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	if c.api == nil {
		return "", llm.ErrNotConfigured
	}
	model := req.Model
	if strings.TrimSpace(model) == "" {
		model = c.model
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Params.Temperature),
		TopP:            genai.Ptr(req.Params.TopP),
		MaxOutputTokens: int32(req.Params.MaxTokens),
	}
	if req.SystemMessage != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemMessage, genai.RoleUser)
	}

	resp, err := c.api.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: gemini request timeout after %s: %v", llm.ErrCompletion, c.timeout, err)
		}
		return "", fmt.Errorf("%w: gemini: %v", llm.ErrCompletion, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: gemini response missing candidates", llm.ErrCompletion)
	}

	fields := map[string]any{"provider": "gemini", "model": model}
	if usage := resp.UsageMetadata; usage != nil {
		fields["prompt_tokens"] = usage.PromptTokenCount
		fields["completion_tokens"] = usage.CandidatesTokenCount
		fields["total_tokens"] = usage.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
	return resp.Text(), nil
}

var _ llm.Completer = (*Client)(nil)
