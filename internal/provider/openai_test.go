package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAI_RequiresAPIKey(t *testing.T) {
	cfg := testConfig("http://example.invalid")
	cfg.OpenAI.APIKey = ""

	_, err := NewOpenAI(cfg, NoopObserver{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "openai", pe.Provider)
}

func TestOpenAI_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		assert.Equal(t, 1000, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be terse", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "user prompt", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openaiBody("answer text")))
	}))
	defer srv.Close()

	p, err := NewOpenAI(testConfig(srv.URL), NoopObserver{})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), GenerateRequest{
		SystemPrompt: "be terse",
		UserPrompt:   "user prompt",
	})
	require.NoError(t, err)
	assert.Equal(t, "answer text", resp.Text)
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.GreaterOrEqual(t, resp.LatencyMs, int64(0))
}

func TestOpenAI_Generate_DefaultSystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "You are a helpful assistant.", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openaiBody("ok")))
	}))
	defer srv.Close()

	p, err := NewOpenAI(testConfig(srv.URL), NoopObserver{})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), GenerateRequest{UserPrompt: "hi"})
	require.NoError(t, err)
}

func TestOpenAI_Generate_RequestOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.1, req.Temperature, 1e-9)
		assert.Equal(t, 64, req.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openaiBody("ok")))
	}))
	defer srv.Close()

	p, err := NewOpenAI(testConfig(srv.URL), NoopObserver{})
	require.NoError(t, err)

	temp := 0.1
	maxTok := 64
	resp, err := p.Generate(context.Background(), GenerateRequest{
		UserPrompt:  "hi",
		Model:       "gpt-4o-mini",
		Temperature: &temp,
		MaxTokens:   &maxTok,
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
}

func TestOpenAI_Generate_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAI(testConfig(srv.URL), NoopObserver{})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), GenerateRequest{UserPrompt: "hi"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
