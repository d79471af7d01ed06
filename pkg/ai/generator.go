// Package ai provides text generation clients for OpenAI-compatible, Ollama
// and Gemini endpoints.
package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by the disabled generator and wraps provider
// failures so callers can treat every generation failure uniformly.
var ErrUnavailable = errors.New("generation service unavailable")

// Generator produces text from a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

type disabled struct{}

func (disabled) Generate(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

// New builds the Generator selected by cfg.Provider.
func New(cfg *Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAICompat(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.RequestTimeoutDuration()), nil
	case ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model, cfg.RequestTimeoutDuration()), nil
	case ProviderGemini:
		return NewGemini(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.RequestTimeoutDuration()), nil
	case ProviderNone:
		return disabled{}, nil
	default:
		return nil, ErrInvalidProvider
	}
}
