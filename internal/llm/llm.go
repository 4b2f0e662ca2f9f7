// Package llm provides the generative text backends used for questions the
// deterministic handlers cannot answer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/albapepper/career-analyzer/internal/config"
)

var (
	// ErrMissingCredentials is returned when no API key is configured for the
	// selected provider. It is never retried.
	ErrMissingCredentials = errors.New("missing generative backend credentials")
	// ErrTimeout is returned when every attempt exceeded the call timeout.
	ErrTimeout = errors.New("generative backend timed out")
	// ErrEmptyResponse is returned when the backend answered without text.
	ErrEmptyResponse = errors.New("no text content in response")
)

// Backend is an opaque text-completion service.
type Backend interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Unavailable is a Backend that always fails with a configuration error, so
// the deterministic path keeps working without credentials.
type Unavailable struct {
	Err error
}

// Generate implements Backend.
func (u Unavailable) Generate(context.Context, string, string) (string, error) {
	return "", u.Err
}

// Name implements Backend.
func (u Unavailable) Name() string { return "unavailable" }

// NewBackend builds the backend selected by cfg.
func NewBackend(cfg *config.Config, logger *slog.Logger) Backend {
	if logger == nil {
		logger = slog.Default()
	}
	key := cfg.LLMAPIKey()
	if key == "" {
		logger.Warn("Generative backend disabled", "provider", cfg.LLMProvider, "missing", cfg.LLMAPIKeyName())
		return Unavailable{Err: fmt.Errorf("%w: %s not set", ErrMissingCredentials, cfg.LLMAPIKeyName())}
	}

	switch cfg.LLMProvider {
	case config.ProviderGemini:
		model := cfg.LLMModel
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGemini(GeminiBaseURL, key, model, cfg.LLMMaxOutputTokens, cfg.LLMTemperature, logger)
	default:
		model := cfg.LLMModel
		if model == "" {
			model = DefaultAnthropicModel
		}
		return NewAnthropic(key, model, cfg.LLMMaxOutputTokens, cfg.LLMTemperature, logger)
	}
}

// FromConfig builds the configured backend and wraps it in a Client with the
// configured timeout and request pacing.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return NewClient(NewBackend(cfg, logger), logger,
		WithTimeout(cfg.LLMTimeout),
		WithRequestsPerMinute(cfg.LLMRequestsPerMinute))
}
