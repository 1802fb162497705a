package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// huggingfaceProvider implements Provider using the Hugging Face
// hosted inference API.
type huggingfaceProvider struct {
	client
}

// NewHuggingFace creates a Provider that talks to the Hugging Face
// inference API. Fails when no API key is configured.
func NewHuggingFace(cfg Config, observer Observer) (Provider, error) {
	c, err := newClient("huggingface", cfg, cfg.HuggingFace, observer)
	if err != nil {
		return nil, err
	}
	return &huggingfaceProvider{client: c}, nil
}

func (p *huggingfaceProvider) Name() string { return "huggingface" }

// huggingfaceRequest is the JSON body sent to POST /models/{model}.
// The inference API has no system role; the system prompt is folded
// into the input text.
type huggingfaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingfaceParameters `json:"parameters"`
}

type huggingfaceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type huggingfaceResult struct {
	GeneratedText string `json:"generated_text"`
}

func (p *huggingfaceProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model, temp, maxTok := p.resolve(req)

	input := req.UserPrompt
	if req.SystemPrompt != "" {
		var b strings.Builder
		b.WriteString(req.SystemPrompt)
		b.WriteString("\n\n")
		b.WriteString(req.UserPrompt)
		input = b.String()
	}

	body := huggingfaceRequest{
		Inputs: input,
		Parameters: huggingfaceParameters{
			MaxNewTokens:   maxTok,
			Temperature:    temp,
			ReturnFullText: false,
		},
	}

	url := p.ep.Endpoint + "/models/" + model
	headers := map[string]string{
		"Authorization": "Bearer " + p.ep.APIKey,
	}

	return p.generate(ctx, model, func(ctx context.Context) (string, error) {
		respBody, err := p.postJSON(ctx, url, headers, body)
		if err != nil {
			return "", err
		}
		var results []huggingfaceResult
		if err := json.Unmarshal(respBody, &results); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(results) == 0 {
			return "", fmt.Errorf("%w: empty result list", ErrMalformedResponse)
		}
		return results[0].GeneratedText, nil
	})
}
