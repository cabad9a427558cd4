package groq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resume-analyzer/internal/llm"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestGenerateSendsTwoMessagesAndReturnsFirstChoice(t *testing.T) {
	var got capturedRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"llama-3.3-70b-versatile",
			"choices":[{"index":0,"message":{"role":"assistant","content":"## 1. MATCH SCORE\n82/100"},"finish_reason":"stop"},
			{"index":1,"message":{"role":"assistant","content":"ignored"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	}))
	defer srv.Close()

	client := newClient("gsk-test", "", time.Second, srv.URL)
	text, err := client.Generate(context.Background(), llm.Request{
		Prompt:        "compare these",
		SystemMessage: "you are a recruiter",
		Params:        llm.DefaultParams,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "## 1. MATCH SCORE\n82/100" {
		t.Fatalf("unexpected text %q", text)
	}
	if auth != "Bearer gsk-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	if got.Messages[1].Content != "compare these" {
		t.Fatalf("unexpected prompt %q", got.Messages[1].Content)
	}
	if got.Temperature != 0.7 || got.TopP != 0.9 || got.MaxTokens != 2000 {
		t.Fatalf("unexpected decoding params: %+v", got)
	}
}

func TestGenerateWithoutKeyIsNotConfigured(t *testing.T) {
	client := NewClient("  ", "", time.Second)

	_, err := client.Generate(context.Background(), llm.Request{Prompt: "x"})
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGenerateUpstreamErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
	}))
	defer srv.Close()

	client := newClient("gsk-test", "", time.Second, srv.URL)
	_, err := client.Generate(context.Background(), llm.Request{Prompt: "x"})
	if !errors.Is(err, llm.ErrCompletion) {
		t.Fatalf("expected ErrCompletion, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("expected upstream message in %q", err.Error())
	}
}

func TestGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := newClient("gsk-test", "", 50*time.Millisecond, srv.URL)
	_, err := client.Generate(context.Background(), llm.Request{Prompt: "x"})
	if !errors.Is(err, llm.ErrCompletion) {
		t.Fatalf("expected ErrCompletion, got %v", err)
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout in %q", err.Error())
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-2","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	client := newClient("gsk-test", "custom-model", time.Second, srv.URL)
	if client.Model() != "custom-model" {
		t.Fatalf("unexpected model %q", client.Model())
	}
	_, err := client.Generate(context.Background(), llm.Request{Prompt: "x"})
	if !errors.Is(err, llm.ErrCompletion) {
		t.Fatalf("expected ErrCompletion, got %v", err)
	}
}
