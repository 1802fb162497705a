package provider

import (
	"os"
	"strconv"
)

// EndpointConfig holds the per-provider connection parameters.
type EndpointConfig struct {
	Endpoint string
	Model    string
	APIKey   string
}

// Config holds all configuration for the provider subsystem.
// Generation defaults apply to every provider; each provider can
// override them per request.
type Config struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int
	MaxRetries  int
	LogCalls    bool

	OpenAI      EndpointConfig
	Anthropic   EndpointConfig
	HuggingFace EndpointConfig
}

// DefaultConfig returns a Config with the stock public endpoints and
// generation defaults. API keys are intentionally empty; a provider
// cannot be constructed without one.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.7,
		MaxTokens:   1000,
		TimeoutMs:   30000,
		MaxRetries:  0,
		OpenAI: EndpointConfig{
			Endpoint: "https://api.openai.com/v1",
			Model:    "gpt-4o",
		},
		Anthropic: EndpointConfig{
			Endpoint: "https://api.anthropic.com",
			Model:    "claude-3-opus-20240229",
		},
		HuggingFace: EndpointConfig{
			Endpoint: "https://api-inference.huggingface.co",
			Model:    "meta-llama/Llama-2-70b-chat-hf",
		},
	}
}

// LoadConfig reads provider configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PROMPTMILL_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("PROMPTMILL_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("PROMPTMILL_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("PROMPTMILL_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("PROMPTMILL_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}

	applyEndpointEnv(&cfg.OpenAI, "PROMPTMILL_OPENAI", "OPENAI_API_KEY")
	applyEndpointEnv(&cfg.Anthropic, "PROMPTMILL_ANTHROPIC", "ANTHROPIC_API_KEY")
	applyEndpointEnv(&cfg.HuggingFace, "PROMPTMILL_HUGGINGFACE", "HUGGINGFACE_API_KEY")

	return cfg
}

// applyEndpointEnv overrides one provider's endpoint config from the
// environment. The PROMPTMILL_*-prefixed key wins over the provider's
// conventional key (OPENAI_API_KEY and friends).
func applyEndpointEnv(ec *EndpointConfig, prefix, conventionalKey string) {
	if v := os.Getenv(conventionalKey); v != "" {
		ec.APIKey = v
	}
	if v := os.Getenv(prefix + "_API_KEY"); v != "" {
		ec.APIKey = v
	}
	if v := os.Getenv(prefix + "_ENDPOINT"); v != "" {
		ec.Endpoint = v
	}
	if v := os.Getenv(prefix + "_MODEL"); v != "" {
		ec.Model = v
	}
}
