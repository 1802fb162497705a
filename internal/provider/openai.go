package provider

import (
	"context"
	"encoding/json"
	"fmt"
)

// openaiProvider implements Provider using the OpenAI chat completions API.
type openaiProvider struct {
	client
}

// NewOpenAI creates a Provider that talks to the OpenAI API.
// Fails when no API key is configured.
func NewOpenAI(cfg Config, observer Observer) (Provider, error) {
	c, err := newClient("openai", cfg, cfg.OpenAI, observer)
	if err != nil {
		return nil, err
	}
	return &openaiProvider{client: c}, nil
}

func (p *openaiProvider) Name() string { return "openai" }

// openaiRequest is the JSON body sent to POST /chat/completions.
type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

func (p *openaiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model, temp, maxTok := p.resolve(req)

	system := req.SystemPrompt
	if system == "" {
		system = "You are a helpful assistant."
	}

	body := openaiRequest{
		Model: model,
		Messages: []openaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: temp,
		MaxTokens:   maxTok,
	}

	url := p.ep.Endpoint + "/chat/completions"
	headers := map[string]string{
		"Authorization": "Bearer " + p.ep.APIKey,
	}

	return p.generate(ctx, model, func(ctx context.Context) (string, error) {
		respBody, err := p.postJSON(ctx, url, headers, body)
		if err != nil {
			return "", err
		}
		var resp openaiResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
		}
		return resp.Choices[0].Message.Content, nil
	})
}
