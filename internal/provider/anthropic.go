package provider

import (
	"context"
	"encoding/json"
	"fmt"
)

// anthropicProvider implements Provider using the Anthropic messages API.
type anthropicProvider struct {
	client
}

// NewAnthropic creates a Provider that talks to the Anthropic API.
// Fails when no API key is configured.
func NewAnthropic(cfg Config, observer Observer) (Provider, error) {
	c, err := newClient("anthropic", cfg, cfg.Anthropic, observer)
	if err != nil {
		return nil, err
	}
	return &anthropicProvider{client: c}, nil
}

func (p *anthropicProvider) Name() string { return "anthropic" }

// anthropicRequest is the JSON body sent to POST /v1/messages.
// The system prompt is a top-level field, not a message role.
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *anthropicProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model, temp, maxTok := p.resolve(req)

	system := req.SystemPrompt
	if system == "" {
		system = "You are Claude, a helpful AI assistant."
	}

	body := anthropicRequest{
		Model: model,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   maxTok,
		Temperature: temp,
		System:      system,
	}

	url := p.ep.Endpoint + "/v1/messages"
	headers := map[string]string{
		"x-api-key":         p.ep.APIKey,
		"anthropic-version": "2023-06-01",
	}

	return p.generate(ctx, model, func(ctx context.Context) (string, error) {
		respBody, err := p.postJSON(ctx, url, headers, body)
		if err != nil {
			return "", err
		}
		var resp anthropicResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(resp.Content) == 0 {
			return "", fmt.Errorf("%w: no content blocks in response", ErrMalformedResponse)
		}
		return resp.Content[0].Text, nil
	})
}
