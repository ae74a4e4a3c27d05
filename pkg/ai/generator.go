// Package ai talks to the language model providers the dashboard can use
// to summarise the agent's day.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/config"
)

// ErrNotConfigured is returned when no provider or key is set.
var ErrNotConfigured = errors.New("ai provider not configured")

// Generator defines the interface for text generation
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}

// New builds the generator named by cfg.Provider. When the provider is
// empty the first provider with a key wins, in the order gemini,
// anthropic, openai, moonshot.
func New(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		switch {
		case cfg.GeminiAPIKey != "":
			provider = "gemini"
		case cfg.AnthropicAPIKey != "":
			provider = "anthropic"
		case cfg.OpenAIAPIKey != "":
			provider = "openai"
		case cfg.MoonshotAPIKey != "":
			provider = "moonshot"
		default:
			return nil, ErrNotConfigured
		}
	}

	switch provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: gemini api key missing", ErrNotConfigured)
		}
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: anthropic api key missing", ErrNotConfigured)
		}
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: openai api key missing", ErrNotConfigured)
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model), nil
	case "moonshot":
		if cfg.MoonshotAPIKey == "" {
			return nil, fmt.Errorf("%w: moonshot api key missing", ErrNotConfigured)
		}
		return NewMoonshotClient(cfg.MoonshotAPIKey, cfg.Model), nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
}
