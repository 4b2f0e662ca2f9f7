package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when LLM_MODEL is empty.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// Anthropic implements Backend using the Messages API.
type Anthropic struct {
	client      anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
	logger      *slog.Logger
}

// NewAnthropic creates an Anthropic backend.
func NewAnthropic(apiKey, model string, maxTokens int, temperature float64, logger *slog.Logger) *Anthropic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Anthropic{
		// Retries are owned by Client.
		client:      anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0)),
		model:       anthropic.Model(model),
		maxTokens:   int64(maxTokens),
		temperature: temperature,
		logger:      logger,
	}
}

// Name implements Backend.
func (a *Anthropic) Name() string { return "anthropic" }

// Generate implements Backend.
func (a *Anthropic) Generate(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	params := anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	duration := time.Since(start)
	if err != nil {
		a.logger.Error("Anthropic API call failed", "duration", duration, "error", err)
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	a.logger.Debug("Anthropic API call completed", "duration", duration, "stop_reason", msg.StopReason)

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
