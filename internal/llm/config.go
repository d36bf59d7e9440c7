package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	Provider string

	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Any OpenAI-compatible endpoint.
}

type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures transport-level retries of a single model call.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the OpenAI-backed defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderOpenAI,
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o-mini",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     8 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from QUIZSOLVER_* variables. The plain
// vendor variables (OPENAI_API_KEY and friends) fill any key left unset.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setString(&cfg.Provider, "QUIZSOLVER_LLM_PROVIDER")

	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY", "QUIZSOLVER_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "QUIZSOLVER_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "QUIZSOLVER_OPENAI_BASE_URL")

	setString(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY", "QUIZSOLVER_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "QUIZSOLVER_ANTHROPIC_MODEL")

	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY", "QUIZSOLVER_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "QUIZSOLVER_GEMINI_MODEL")

	setString(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY", "QUIZSOLVER_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "QUIZSOLVER_OPENROUTER_MODEL")
	setString(&cfg.OpenRouter.BaseURL, "QUIZSOLVER_OPENROUTER_BASE_URL")

	if v := os.Getenv("QUIZSOLVER_LLM_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("QUIZSOLVER_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

// setString overwrites dst with the value of each set variable in turn, so
// later names take precedence.
func setString(dst *string, names ...string) {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			*dst = v
		}
	}
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("LLM retry attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
