package llm

import (
	"context"
	"errors"
)

// Completer abstracts chat-completion providers. Implementations make exactly
// one upstream call per Generate and return the first choice unmodified.
type Completer interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is a single two-message exchange: a system persona and a user prompt.
type Request struct {
	Prompt        string
	SystemMessage string
	Model         string
	Params        Params
}

// Params are the decoding parameters sent with every request.
type Params struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// DefaultParams are fixed for the service and not exposed to callers.
var DefaultParams = Params{
	Temperature: 0.7,
	TopP:        0.9,
	MaxTokens:   2000,
}

var (
	// ErrNotConfigured is returned when the provider credential is missing.
	ErrNotConfigured = errors.New("completion service credential not configured")
	// ErrCompletion wraps every transport or API failure.
	ErrCompletion = errors.New("completion request failed")
)
