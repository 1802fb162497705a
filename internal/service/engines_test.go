package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/promptmill/internal/enhancer"
	"github.com/calebreed/promptmill/internal/provider"
	"github.com/calebreed/promptmill/internal/repository"
	"github.com/calebreed/promptmill/internal/testutil"
)

// fakeUpstream is an OpenAI-shaped test server. respond decides the
// reply for the nth call (1-based).
func fakeUpstream(t *testing.T, respond func(call int64, w http.ResponseWriter)) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(atomic.AddInt64(&calls, 1), w)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func answerWith(text string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"model":"gpt-4o","choices":[{"message":{"role":"assistant","content":%q}}]}`, text)
	}
}

func newTestEngines(t *testing.T, endpoint string, sink repository.HistoryRepo) *Engines {
	t.Helper()
	cfg := provider.DefaultConfig()
	cfg.OpenAI.Endpoint = endpoint
	cfg.OpenAI.APIKey = "test-key"
	cfg.TimeoutMs = 2000
	rules := enhancer.NewRuleSet("", slog.New(slog.DiscardHandler))
	return NewEngines(cfg, rules, sink, nil, nil, nil)
}

func TestProcess_EnhanceThenAnswer(t *testing.T) {
	srv, calls := fakeUpstream(t, func(call int64, w http.ResponseWriter) {
		if call == 1 {
			answerWith("Enhanced: explain goroutines precisely")(w)
			return
		}
		answerWith("Goroutines are lightweight threads.")(w)
	})

	engines := newTestEngines(t, srv.URL, nil)
	resp, err := engines.Process(context.Background(), ProcessRequest{
		Prompt:   "explain goroutines in my code",
		Provider: "openai",
	})
	require.NoError(t, err)

	assert.Equal(t, "Goroutines are lightweight threads.", resp.Response)
	assert.Equal(t, "openai/default", resp.EngineKey)
	require.NotNil(t, resp.EnhancementIndex)
	assert.Equal(t, 0, *resp.EnhancementIndex)
	assert.EqualValues(t, 2, *calls)

	history, err := engines.History("openai/default")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "explain goroutines in my code", history[0].OriginalPrompt)
	assert.Equal(t, "Enhanced: explain goroutines precisely", history[0].EnhancedPrompt)
	assert.Nil(t, history[0].EffectivenessRating)
}

func TestProcess_Bypass(t *testing.T) {
	srv, calls := fakeUpstream(t, func(call int64, w http.ResponseWriter) {
		answerWith("direct answer")(w)
	})

	engines := newTestEngines(t, srv.URL, nil)
	resp, err := engines.Process(context.Background(), ProcessRequest{
		Prompt:            "just answer",
		Provider:          "openai",
		BypassEnhancement: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "direct answer", resp.Response)
	assert.Nil(t, resp.EnhancementIndex)
	assert.EqualValues(t, 1, *calls)

	history, err := engines.History("openai/default")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestProcess_EnhancementFailureFallsBack(t *testing.T) {
	srv, calls := fakeUpstream(t, func(call int64, w http.ResponseWriter) {
		if call == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		answerWith("answer anyway")(w)
	})

	engines := newTestEngines(t, srv.URL, nil)
	resp, err := engines.Process(context.Background(), ProcessRequest{
		Prompt:   "write a poem about rain",
		Provider: "openai",
	})
	require.NoError(t, err)

	assert.Equal(t, "answer anyway", resp.Response)
	require.NotNil(t, resp.EnhancementIndex)
	assert.EqualValues(t, 2, *calls)

	history, err := engines.History("openai/default")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, history[0].OriginalPrompt, history[0].EnhancedPrompt)
}

func TestProcess_FinalGenerationFailure(t *testing.T) {
	srv, _ := fakeUpstream(t, func(call int64, w http.ResponseWriter) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	engines := newTestEngines(t, srv.URL, nil)
	_, err := engines.Process(context.Background(), ProcessRequest{
		Prompt:   "hello",
		Provider: "openai",
	})
	require.Error(t, err)

	var pe *provider.Error
	assert.ErrorAs(t, err, &pe)
}

func TestProcess_UnknownProvider(t *testing.T) {
	engines := newTestEngines(t, "http://example.invalid", nil)
	_, err := engines.Process(context.Background(), ProcessRequest{
		Prompt:   "hello",
		Provider: "cohere",
	})
	assert.ErrorIs(t, err, provider.ErrUnknownProvider)
}

func TestProcess_ModelScopesEngine(t *testing.T) {
	srv, _ := fakeUpstream(t, func(call int64, w http.ResponseWriter) {
		answerWith("ok")(w)
	})

	engines := newTestEngines(t, srv.URL, nil)
	ctx := context.Background()

	_, err := engines.Process(ctx, ProcessRequest{Prompt: "a", Provider: "openai"})
	require.NoError(t, err)
	_, err = engines.Process(ctx, ProcessRequest{Prompt: "b", Provider: "openai", Model: "gpt-4o-mini"})
	require.NoError(t, err)

	histories := engines.Histories()
	assert.Len(t, histories, 2)
	assert.Len(t, histories["openai/default"], 1)
	assert.Len(t, histories["openai/gpt-4o-mini"], 1)
}

func TestFeedback(t *testing.T) {
	srv, _ := fakeUpstream(t, func(call int64, w http.ResponseWriter) {
		answerWith("ok")(w)
	})

	engines := newTestEngines(t, srv.URL, nil)
	ctx := context.Background()

	resp, err := engines.Process(ctx, ProcessRequest{Prompt: "rate me", Provider: "openai"})
	require.NoError(t, err)
	require.NotNil(t, resp.EnhancementIndex)

	require.NoError(t, engines.Feedback(ctx, resp.EngineKey, *resp.EnhancementIndex, 4))

	history, err := engines.History(resp.EngineKey)
	require.NoError(t, err)
	require.NotNil(t, history[0].EffectivenessRating)
	assert.Equal(t, 4, *history[0].EffectivenessRating)
}

func TestFeedback_UnknownEngine(t *testing.T) {
	engines := newTestEngines(t, "http://example.invalid", nil)
	err := engines.Feedback(context.Background(), "openai/default", 0, 3)
	assert.ErrorIs(t, err, ErrEngineNotFound)
}

func TestFeedback_IndexOutOfRange(t *testing.T) {
	srv, _ := fakeUpstream(t, func(call int64, w http.ResponseWriter) {
		answerWith("ok")(w)
	})

	engines := newTestEngines(t, srv.URL, nil)
	ctx := context.Background()

	_, err := engines.Process(ctx, ProcessRequest{Prompt: "one", Provider: "openai"})
	require.NoError(t, err)

	err = engines.Feedback(ctx, "openai/default", 7, 3)
	assert.ErrorIs(t, err, enhancer.ErrIndexOutOfRange)
}

func TestHistory_UnknownEngine(t *testing.T) {
	engines := newTestEngines(t, "http://example.invalid", nil)
	_, err := engines.History("anthropic/default")
	assert.ErrorIs(t, err, ErrEngineNotFound)
}

func TestProcess_PersistsToSink(t *testing.T) {
	srv, _ := fakeUpstream(t, func(call int64, w http.ResponseWriter) {
		answerWith("persisted")(w)
	})

	db := testutil.NewTestDB(t)
	sink := repository.NewSQLiteHistoryRepo(db)
	engines := newTestEngines(t, srv.URL, sink)
	ctx := context.Background()

	resp, err := engines.Process(ctx, ProcessRequest{Prompt: "save this", Provider: "openai"})
	require.NoError(t, err)
	require.NotNil(t, resp.EnhancementIndex)

	records, err := sink.ListByEngine(ctx, resp.EngineKey)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "save this", records[0].OriginalPrompt)
	assert.Nil(t, records[0].EffectivenessRating)

	require.NoError(t, engines.Feedback(ctx, resp.EngineKey, *resp.EnhancementIndex, 5))

	records, err = sink.ListByEngine(ctx, resp.EngineKey)
	require.NoError(t, err)
	require.NotNil(t, records[0].EffectivenessRating)
	assert.Equal(t, 5, *records[0].EffectivenessRating)
}

func TestEngineKey(t *testing.T) {
	assert.Equal(t, "openai/default", EngineKey("openai", ""))
	assert.Equal(t, "openai/gpt-4o-mini", EngineKey("OpenAI", "gpt-4o-mini"))
	assert.Equal(t, "anthropic/claude-3-opus-20240229", EngineKey("Anthropic", "claude-3-opus-20240229"))
}

func TestProcess_OptionsPassThrough(t *testing.T) {
	type openaiMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	var answerReq struct {
		Model       string      `json:"model"`
		Messages    []openaiMsg `json:"messages"`
		Temperature float64     `json:"temperature"`
		MaxTokens   int         `json:"max_tokens"`
	}

	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 2 {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&answerReq))
		}
		answerWith("ok")(w)
	}))
	t.Cleanup(srv.Close)

	engines := newTestEngines(t, srv.URL, nil)
	temp := 0.1
	maxTok := 128
	_, err := engines.Process(context.Background(), ProcessRequest{
		Prompt:   "hello",
		Provider: "openai",
		Options: Options{
			SystemPrompt: "answer in haiku",
			Temperature:  &temp,
			MaxTokens:    &maxTok,
		},
	})
	require.NoError(t, err)

	require.Len(t, answerReq.Messages, 2)
	assert.Equal(t, "answer in haiku", answerReq.Messages[0].Content)
	assert.InDelta(t, 0.1, answerReq.Temperature, 1e-9)
	assert.Equal(t, 128, answerReq.MaxTokens)
}
