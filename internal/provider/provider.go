package provider

import "context"

// GenerateRequest holds the parameters for a single model generation call.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	Model        string   // empty uses the provider's configured model
	Temperature  *float64 // nil uses the configured default
	MaxTokens    *int     // nil uses the configured default
}

// GenerateResponse holds the result of a model generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Provider is the uniform capability the core needs from an upstream model:
// send a prompt, get text back. Implementations own all wire details.
type Provider interface {
	// Name returns the provider's registry key, e.g. "openai".
	Name() string

	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}
