// Package service owns the mapping from provider configuration to prompt
// enhancer instances and drives the boundary operations against them.
// One engine (provider + enhancer + history) exists per provider/model
// pair; feedback and history reads are scoped to a single engine key.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/calebreed/promptmill/internal/enhancer"
	"github.com/calebreed/promptmill/internal/provider"
	"github.com/calebreed/promptmill/internal/repository"
)

// ErrEngineNotFound indicates feedback or a history read referenced an
// engine key no process call has created.
var ErrEngineNotFound = errors.New("engine not found")

// Options are the per-request generation knobs a caller may pass through
// to the final answer call.
type Options struct {
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
	APIKey       string   `json:"api_key,omitempty"`
}

// ProcessRequest is one prompt-processing call.
type ProcessRequest struct {
	Prompt            string  `json:"prompt"`
	Provider          string  `json:"provider"`
	Model             string  `json:"model,omitempty"`
	Options           Options `json:"options,omitempty"`
	BypassEnhancement bool    `json:"bypass_enhancement,omitempty"`
}

// ProcessResponse carries the final answer plus the handle needed to
// rate the enhancement later: the engine key and the record index.
// EnhancementIndex is nil when enhancement was bypassed or skipped.
type ProcessResponse struct {
	Response         string `json:"response"`
	EngineKey        string `json:"engine_id"`
	EnhancementIndex *int   `json:"enhancement_index,omitempty"`
}

// engine pairs one provider instance with the enhancer that owns its
// enhancement history.
type engine struct {
	key      string
	provider provider.Provider
	enhancer *enhancer.Enhancer
}

// Engines is the boundary-owned registry of prompt enhancer instances,
// keyed by "<provider>/<model>". Creation is lazy: the first process
// call for a pair constructs its engine.
type Engines struct {
	cfg      provider.Config
	rules    *enhancer.RuleSet
	sink     repository.HistoryRepo // optional persistence, nil disables it
	observer provider.Observer
	usecases UseCaseObserver
	logger   *slog.Logger

	mu      sync.Mutex
	engines map[string]*engine
}

// NewEngines creates an empty engine registry. sink may be nil.
func NewEngines(cfg provider.Config, rules *enhancer.RuleSet, sink repository.HistoryRepo,
	observer provider.Observer, logger *slog.Logger, usecases UseCaseObserver) *Engines {
	if observer == nil {
		observer = provider.NoopObserver{}
	}
	if usecases == nil {
		usecases = NoopUseCaseObserver{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engines{
		cfg:      cfg,
		rules:    rules,
		sink:     sink,
		observer: observer,
		usecases: usecases,
		logger:   logger,
		engines:  make(map[string]*engine),
	}
}

// EngineKey derives the stable identity of an engine from the provider
// name and model. An empty model maps to "default".
func EngineKey(providerName, model string) string {
	if model == "" {
		model = "default"
	}
	return strings.ToLower(providerName) + "/" + model
}

// Process runs one prompt through the enhancement pipeline (unless
// bypassed) and then through the provider for the final answer. A failed
// enhancement degrades to the original prompt; a failed final generation
// is the caller's error.
func (s *Engines) Process(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	start := time.Now()
	key := EngineKey(req.Provider, req.Model)

	resp, err := s.process(ctx, key, req)
	s.usecases.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "process",
		EngineKey: key,
		Duration:  time.Since(start),
		Success:   err == nil,
		Err:       err,
	})
	return resp, err
}

func (s *Engines) process(ctx context.Context, key string, req ProcessRequest) (*ProcessResponse, error) {
	eng, err := s.engineFor(key, req.Provider, req.Options.APIKey)
	if err != nil {
		return nil, err
	}

	finalPrompt := req.Prompt
	var indexPtr *int
	if !req.BypassEnhancement {
		enhanced, index := eng.enhancer.Enhance(ctx, req.Prompt)
		finalPrompt = enhanced
		if index >= 0 {
			indexPtr = &index
			s.persistRecord(ctx, eng, index)
		}
	}

	answer, err := eng.provider.Generate(ctx, provider.GenerateRequest{
		SystemPrompt: req.Options.SystemPrompt,
		UserPrompt:   finalPrompt,
		Model:        req.Model,
		Temperature:  req.Options.Temperature,
		MaxTokens:    req.Options.MaxTokens,
	})
	if err != nil {
		// No fallback exists for "no answer at all".
		return nil, err
	}

	return &ProcessResponse{
		Response:         answer.Text,
		EngineKey:        eng.key,
		EnhancementIndex: indexPtr,
	}, nil
}

// Feedback overwrites the effectiveness rating of one enhancement record,
// addressed by engine key and index. Unknown engines and out-of-range
// indices are a not-found condition; nothing is mutated.
func (s *Engines) Feedback(ctx context.Context, engineKey string, index, rating int) error {
	start := time.Now()
	err := s.feedback(ctx, engineKey, index, rating)
	s.usecases.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "feedback",
		EngineKey: engineKey,
		Duration:  time.Since(start),
		Success:   err == nil,
		Err:       err,
	})
	return err
}

func (s *Engines) feedback(ctx context.Context, engineKey string, index, rating int) error {
	eng := s.lookup(engineKey)
	if eng == nil {
		return ErrEngineNotFound
	}
	if err := eng.enhancer.RecordEffectiveness(index, rating); err != nil {
		return err
	}
	if s.sink != nil {
		if err := s.sink.UpdateRating(ctx, engineKey, index, rating); err != nil {
			s.logger.Warn("persisting rating failed", "engine", engineKey, "index", index, "error", err)
		}
	}
	return nil
}

// History returns one engine's enhancement records in insertion order.
func (s *Engines) History(engineKey string) ([]enhancer.Record, error) {
	eng := s.lookup(engineKey)
	if eng == nil {
		return nil, ErrEngineNotFound
	}
	return eng.enhancer.Snapshot(), nil
}

// Histories returns the records of every live engine, keyed by engine.
func (s *Engines) Histories() map[string][]enhancer.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]enhancer.Record, len(s.engines))
	for key, eng := range s.engines {
		out[key] = eng.enhancer.Snapshot()
	}
	return out
}

// engineFor returns the engine for key, constructing provider and
// enhancer on first use. Construction failures (unknown provider,
// missing credential) surface to the caller.
func (s *Engines) engineFor(key, providerName, apiKey string) (*engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eng, ok := s.engines[key]; ok {
		return eng, nil
	}

	cfg := s.cfg
	if apiKey != "" {
		cfg = cfg.WithAPIKey(providerName, apiKey)
	}

	p, err := provider.New(providerName, cfg, s.observer)
	if err != nil {
		return nil, err
	}

	eng := &engine{
		key:      key,
		provider: p,
		enhancer: enhancer.New(p, s.rules, s.logger.With("engine", key)),
	}
	s.engines[key] = eng
	s.logger.Info("created engine", "engine", key)
	return eng, nil
}

func (s *Engines) lookup(key string) *engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engines[key]
}

// persistRecord writes one appended record to the sink. Persistence is
// best effort: failures are logged, never surfaced to the request.
func (s *Engines) persistRecord(ctx context.Context, eng *engine, index int) {
	if s.sink == nil {
		return
	}
	rec, err := eng.enhancer.Record(index)
	if err != nil {
		s.logger.Warn("reading record for persistence failed", "engine", eng.key, "index", index, "error", err)
		return
	}
	if err := s.sink.SaveRecord(ctx, eng.key, index, rec); err != nil {
		s.logger.Warn("persisting enhancement record failed", "engine", eng.key, "index", index, "error", err)
	}
}
