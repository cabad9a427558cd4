package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"

	defaultPort       = "8000"
	defaultLLMTimeout = 60 * time.Second
)

// DefaultCORSOrigins are always allowed; FRONTEND_URL is appended at load time.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"https://*.vercel.app",
}

// Config holds application configuration. It is built once at startup and
// passed by value; nothing reads the environment after Load returns.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	AllowAllOrigins bool
	LLMProvider     string
	LLMModel        string
	LLMTimeout      time.Duration
	GroqAPIKey      string
	GeminiAPIKey    string
}

// Load reads configuration from environment variables with sensible defaults.
// A YAML file named by CONFIG_FILE supplies values the environment leaves unset.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) string {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
		return strings.TrimSpace(file[key])
	}
	return fromLookup(lookup)
}

func fromLookup(lookup func(string) string) (Config, error) {
	timeout := defaultLLMTimeout
	if raw := lookup("LLM_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("LLM_TIMEOUT_SECONDS must be a positive integer, got %q", raw)
		}
		timeout = time.Duration(secs) * time.Second
	}

	origins := append([]string(nil), DefaultCORSOrigins...)
	if frontend := lookup("FRONTEND_URL"); frontend != "" {
		for _, origin := range splitAndTrim(frontend) {
			if !validOrigin(origin) {
				return Config{}, fmt.Errorf("FRONTEND_URL entry %q must start with http:// or https:// or contain '*'", origin)
			}
			origins = append(origins, origin)
		}
	}

	return Config{
		Port:            withDefault(lookup("PORT"), defaultPort),
		Env:             normalizeEnv(lookup("ENV")),
		CORSAllowOrigin: origins,
		AllowAllOrigins: lookup("ALLOW_ALL_ORIGINS") != "",
		LLMProvider:     normalizeProvider(lookup("LLM_PROVIDER")),
		LLMModel:        lookup("LLM_MODEL"),
		LLMTimeout:      timeout,
		GroqAPIKey:      lookup("GROQ_API_KEY"),
		GeminiAPIKey:    lookup("GEMINI_API_KEY"),
	}, nil
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.GroqAPIKey
}

// APIKeyName is the environment variable operators set to configure the provider.
func (c Config) APIKeyName() string {
	if c.LLMProvider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "GROQ_API_KEY"
}

func withDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func validOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://") ||
		strings.HasPrefix(origin, "https://") ||
		strings.Contains(origin, "*")
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return ProviderGemini
	default:
		return ProviderGroq
	}
}
