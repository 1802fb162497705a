// Package enhancer implements the prompt-enhancement pipeline: classify
// a raw prompt, instantiate the matching meta-prompt template, ask the
// model to rewrite the prompt, and record the attempt for later feedback.
package enhancer

import (
	"context"
	"log/slog"

	"github.com/calebreed/promptmill/internal/provider"
)

// Enhancer rewrites raw prompts through a one-shot meta-prompt call and
// owns the history of its attempts. One Enhancer per provider identity
// is the expected deployment shape; mutating calls on a single instance
// are serialized by the history's own locking.
type Enhancer struct {
	provider provider.Provider
	rules    *RuleSet
	history  *History
	logger   *slog.Logger
}

// New creates an Enhancer for the given provider and rule set.
func New(p provider.Provider, rules *RuleSet, logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enhancer{
		provider: p,
		rules:    rules,
		history:  NewHistory(),
		logger:   logger,
	}
}

// Enhance rewrites a prompt and appends exactly one record to the
// history, returning the enhanced text and the record's index. It never
// fails: any provider error degrades to returning the original prompt.
// The one exception is cancellation — if ctx is done before the record
// would be appended, Enhance returns the original prompt and index -1
// with no record appended.
func (e *Enhancer) Enhance(ctx context.Context, prompt string) (string, int) {
	category := DetectCategory(prompt)
	rule := e.rules.Lookup(category)
	metaPrompt := rule.Instantiate(prompt)

	enhanced := prompt
	resp, err := e.provider.Generate(ctx, provider.GenerateRequest{
		SystemPrompt: rule.SystemPrompt,
		UserPrompt:   metaPrompt,
	})
	if ctx.Err() != nil {
		return prompt, -1
	}
	if err != nil {
		e.logger.Warn("prompt enhancement failed, using original prompt",
			"category", category, "error", err)
	} else {
		enhanced = resp.Text
	}

	index := e.history.Append(NewRecord(prompt, enhanced))

	e.logger.Info("enhanced prompt", "category", category, "index", index)
	e.logger.Debug("enhancement detail", "original", prompt, "enhanced", enhanced)

	return enhanced, index
}

// RecordEffectiveness overwrites the rating of the record at index.
// Out-of-range indices report ErrIndexOutOfRange and mutate nothing.
func (e *Enhancer) RecordEffectiveness(index, rating int) error {
	if err := e.history.SetRating(index, rating); err != nil {
		e.logger.Warn("invalid enhancement index", "index", index)
		return err
	}
	e.logger.Info("recorded effectiveness rating", "index", index, "rating", rating)
	return nil
}

// Record returns the record at index. It exists for callers that need
// the appended record itself, e.g. for persistence.
func (e *Enhancer) Record(index int) (Record, error) {
	return e.history.Get(index)
}

// Snapshot returns all enhancement records in insertion order.
func (e *Enhancer) Snapshot() []Record {
	return e.history.Snapshot()
}

// Len returns the number of recorded enhancement attempts.
func (e *Enhancer) Len() int {
	return e.history.Len()
}
