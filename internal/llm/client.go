package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// Response is the outcome of one generative call. Failures are captured in
// Err instead of being returned.
type Response struct {
	Text      string
	Success   bool
	Err       error
	CostUnits int
	Attempts  int
}

// Client wraps a Backend with a per-call timeout, a single retry on timeout,
// request pacing and cost estimation.
type Client struct {
	backend    Backend
	timeout    time.Duration
	maxTries   uint
	retryDelay time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-attempt deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithRetryDelay sets the pause before retrying a timed-out call.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.retryDelay = d }
}

// WithRequestsPerMinute paces calls to the backend. Zero disables pacing.
func WithRequestsPerMinute(n int) ClientOption {
	return func(c *Client) {
		if n <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(n)/60.0), 1)
	}
}

// NewClient creates a Client. Defaults: 30s timeout, one retry after 500ms,
// no pacing.
func NewClient(backend Backend, logger *slog.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		backend:    backend,
		timeout:    30 * time.Second,
		maxTries:   2,
		retryDelay: 500 * time.Millisecond,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the wrapped backend.
func (c *Client) Backend() Backend { return c.backend }

// Query sends system and prompt to the backend. It never returns an error:
// failures yield a Response with Success false and Err set.
func (c *Client) Query(ctx context.Context, system, prompt string) Response {
	var attempts int
	op := func() (string, error) {
		attempts++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		text, err := c.backend.Generate(callCtx, system, prompt)
		if err == nil {
			return text, nil
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			c.logger.Warn("Generative call timed out", "backend", c.backend.Name(), "attempt", attempts, "timeout", c.timeout)
			return "", fmt.Errorf("%w after %s: %v", ErrTimeout, c.timeout, err)
		}
		return "", backoff.Permanent(err)
	}

	text, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.retryDelay)),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		c.logger.Error("Generative call failed", "backend", c.backend.Name(), "attempts", attempts, "error", err)
		return Response{Err: err, Attempts: attempts}
	}

	return Response{
		Text:      text,
		Success:   true,
		CostUnits: EstimateCost(system, prompt, text),
		Attempts:  attempts,
	}
}

// EstimateCost approximates token usage as one unit per four characters of
// the full prompt plus the response.
func EstimateCost(system, prompt, response string) int {
	chars := utf8.RuneCountInString(prompt) + utf8.RuneCountInString(response)
	if system != "" {
		chars += utf8.RuneCountInString(system) + 2 // "\n\n" separator
	}
	return chars / 4
}
