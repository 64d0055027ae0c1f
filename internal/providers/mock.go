package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailErr      error // Error to return when failing (default: ErrUpstream)
	FailAfter    int   // Fail after N requests (0 = never)
	ResponseText string

	// Responses, when set, are returned in order, one per request.
	// After the slice is exhausted ResponseText is used.
	Responses []string

	// State
	mu           sync.Mutex
	requests     []*ChatRequest
	requestCount atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	fail := c.ShouldFail || (c.FailAfter > 0 && int(count) > c.FailAfter)
	if fail {
		err := c.FailErr
		if err == nil {
			err = fmt.Errorf("%w: mock client configured to fail", ErrUpstream)
		}
		result.Success = false
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			result.Success = false
			result.ErrorMessage = ctx.Err().Error()
			result.ExecutionTime = time.Since(start)
			return result, ctx.Err()
		}
	}

	text := c.ResponseText
	c.mu.Lock()
	if idx := int(count) - 1; idx < len(c.Responses) {
		text = c.Responses[idx]
	}
	c.mu.Unlock()

	result.Success = true
	result.Content = text
	result.ExecutionTime = time.Since(start)

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}
	result.PromptTokens = promptTokens
	result.CompletionTokens = len(text) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns a copy of all requests received.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Reset clears the request history and counter.
func (c *MockClient) Reset() {
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
	c.requestCount.Store(0)
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
