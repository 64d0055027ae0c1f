// Package chain invokes an LLM provider with a system+user prompt pair and
// shapes the result as plain text or schema-validated JSON.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alonmar/books-gen/internal/providers"
)

// ErrMalformedIndex marks model output that could not be parsed or
// validated as a book index.
var ErrMalformedIndex = errors.New("malformed index output")

// Chain binds a provider client to a model and sampling settings so
// callers deal only in prompts.
type Chain struct {
	client      providers.LLMClient
	model       string
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(c *Chain) { c.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Chain) { c.temperature = t }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Chain) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chain) { c.logger = l }
}

// New creates a Chain over the given client.
func New(client providers.LLMClient, opts ...Option) *Chain {
	c := &Chain{
		client:      client,
		temperature: 0.7,
		timeout:     120 * time.Second,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Text runs a plain generation and returns the raw model text.
func (c *Chain) Text(ctx context.Context, system, user string) (string, error) {
	result, err := c.invoke(ctx, system, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Content), nil
}

// JSON runs a generation whose output must be a JSON document matching
// schema. The primary contract is strict JSON; fenced-block and brace-scan
// recovery are applied before rejecting the output.
func (c *Chain) JSON(ctx context.Context, system, user string, schema json.RawMessage) (json.RawMessage, error) {
	result, err := c.invoke(ctx, system, user)
	if err != nil {
		return nil, err
	}

	parsed, err := providers.ParseJSONOutput(result.Content)
	if err != nil {
		c.logger.Warn("model output is not JSON",
			"provider", result.Provider,
			"request_id", result.RequestID,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedIndex, err)
	}
	if err := providers.ValidateJSONOutput(schema, parsed); err != nil {
		c.logger.Warn("model output failed schema validation",
			"provider", result.Provider,
			"request_id", result.RequestID,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedIndex, err)
	}
	return parsed, nil
}

func (c *Chain) invoke(ctx context.Context, system, user string) (*providers.ChatResult, error) {
	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Model:       c.model,
		Temperature: c.temperature,
		Timeout:     c.timeout,
	}

	start := time.Now()
	result, err := c.client.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.Content) == "" {
		return nil, fmt.Errorf("%w: empty completion", providers.ErrUpstream)
	}

	c.logger.Debug("chain invocation complete",
		"provider", result.Provider,
		"model", result.ModelUsed,
		"duration", time.Since(start),
		"completion_tokens", result.CompletionTokens)
	return result, nil
}
