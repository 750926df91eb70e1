package memo

import (
	"github.com/poiesic/agentstore/cache"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewOpenAICompleter creates a Completer backed by an OpenAI-compatible
// chat service.
func NewOpenAICompleter(config *Config, dao cache.DAO) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return NewCompleter(client, config.Model, dao, config.Generation), nil
}
