package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/analysis"
	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/llm/gemini"
	"resume-analyzer/internal/llm/groq"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/server"
	"resume-analyzer/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	Completer       llm.Completer
	Metrics         *metrics.Registry
	AnalysisService *analysis.Service
	AnalysisHandler *analysis.Handler
}

// Option customizes Build.
type Option func(*buildOptions)

type buildOptions struct {
	completer llm.Completer
	metrics   *metrics.Registry
}

// WithCompleter replaces the provider client, e.g. with a test double.
func WithCompleter(c llm.Completer) Option {
	return func(o *buildOptions) { o.completer = c }
}

// WithMetrics uses r instead of metrics.Default.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *buildOptions) { o.metrics = r }
}

// Build wires config, completer, service, handler and router.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = config.ProviderGroq
	}
	o := buildOptions{metrics: metrics.Default}
	for _, opt := range opts {
		opt(&o)
	}

	completer, model, err := buildCompleter(ctx, cfg, o.completer)
	if err != nil {
		return nil, err
	}

	svc := &analysis.Service{
		Completer:      completer,
		Provider:       cfg.LLMProvider,
		Model:          model,
		CredentialName: cfg.APIKeyName(),
		Configured:     cfg.APIKey() != "",
		Params:         llm.DefaultParams,
		Metrics:        o.metrics,
	}
	handler := analysis.NewHandler(svc)

	app := &App{
		Config:          cfg,
		Completer:       completer,
		Metrics:         o.metrics,
		AnalysisService: svc,
		AnalysisHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: handler,
		Metrics:         o.metrics,
	})

	if !svc.Configured {
		telemetry.Warn("bootstrap.credential_missing", map[string]any{
			"provider": cfg.LLMProvider,
			"setting":  cfg.APIKeyName(),
		})
	}
	return app, nil
}

func buildCompleter(ctx context.Context, cfg config.Config, override llm.Completer) (llm.Completer, string, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, "", fmt.Errorf("bootstrap gemini: %w", err)
		}
		return pick(override, client), client.Model(), nil
	case config.ProviderGroq:
		client := groq.NewClient(cfg.GroqAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		return pick(override, client), client.Model(), nil
	default:
		return nil, "", errors.New("bootstrap: unknown LLM provider " + cfg.LLMProvider)
	}
}

func pick(override, fallback llm.Completer) llm.Completer {
	if override != nil {
		return override
	}
	return fallback
}
