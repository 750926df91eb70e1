package memo

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/poiesic/agentstore/cache"
	"github.com/tmc/langchaingo/llms"
)

// Completer answers prompts from the cache when it holds a completion of
// the current generation, and from the model otherwise.
type Completer struct {
	model      llms.Model
	modelName  string
	generation int
	cache      cache.DAO
	logger     *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCompleter memoizes model's completions in dao. modelName takes part
// in the cache key so two models never share entries.
func NewCompleter(model llms.Model, modelName string, dao cache.DAO, generation int) *Completer {
	return &Completer{
		model:      model,
		modelName:  modelName,
		generation: generation,
		cache:      dao,
		logger:     slog.Default().With("component", "memo", "model", modelName),
	}
}

// Key returns the cache key of prompt.
func (c *Completer) Key(prompt string) string {
	return cache.KeyFor("completion", c.modelName, normalizePrompt(prompt))
}

// Complete returns the completion of prompt. Call options are not part of
// the cache key.
func (c *Completer) Complete(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	key := c.Key(prompt)

	entry, err := c.cache.FindByID(ctx, key)
	if err != nil {
		return "", err
	}
	if cache.Fresh(entry, c.generation) {
		c.hits.Add(1)
		c.logger.Debug("cache hit", "key", key)
		return entry.Payload, nil
	}
	c.misses.Add(1)
	if entry != nil {
		c.logger.Debug("stale entry", "key", key, "generation", entry.Generation, "want", c.generation)
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, opts...)
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if _, err := c.cache.InsertCache(ctx, cache.New(key, c.generation, text)); err != nil {
		return "", err
	}
	return text, nil
}

// Forget drops the cached completion of prompt.
func (c *Completer) Forget(ctx context.Context, prompt string) error {
	return c.cache.DeleteCacheWithID(ctx, c.Key(prompt))
}

// Stats returns the number of cache hits and misses so far.
func (c *Completer) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// normalizePrompt collapses runs of whitespace so that prompts differing
// only in layout share an entry.
func normalizePrompt(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
