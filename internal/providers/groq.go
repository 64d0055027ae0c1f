package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	GroqName    = "groq"
	GroqBaseURL = "https://api.groq.com/openai/v1"

	groqDefaultModel = "llama-3.1-8b-instant"
)

// GroqConfig holds configuration for the Groq client.
// Groq exposes an OpenAI-compatible API, so the client is built on the
// official OpenAI SDK pointed at the Groq base URL. Any other
// OpenAI-compatible endpoint works by overriding BaseURL.
type GroqConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	// Rate limiting and retry
	RPM        int           // Requests per minute (default: 30)
	MaxRetries int           // Max attempts per call (default: 3)
	RetryDelay time.Duration // Base delay between attempts (default: 1s)
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// GroqClient implements LLMClient against the Groq chat-completions API.
type GroqClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	timeout      time.Duration
	rpm          int
	maxRetries   int
	retryDelay   time.Duration
	limiter      *RateLimiter
	client       openai.Client
}

// NewGroqClient creates a new Groq client.
func NewGroqClient(cfg GroqConfig) *GroqClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = groqDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPM <= 0 {
		cfg.RPM = 30
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	// Retries are handled here, not in the SDK transport, so the rate
	// limiter sees every attempt.
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &GroqClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		timeout:      cfg.Timeout,
		rpm:          cfg.RPM,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		limiter:      NewRateLimiter(cfg.RPM),
		client:       client,
	}
}

// Name returns the client identifier.
func (c *GroqClient) Name() string {
	return GroqName
}

// RequestsPerMinute returns the configured rate limit.
func (c *GroqClient) RequestsPerMinute() int {
	return c.rpm
}

// Chat sends a chat completion request. Failures are classified into
// ErrRateLimited and ErrUpstream; rate limits and server errors are
// retried with backoff before the call is given up.
func (c *GroqClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  GroqName,
	}

	var completion *openai.ChatCompletion
	err := retry.Do(
		func() error {
			result.Attempts++
			if err := c.limiter.Wait(callCtx); err != nil {
				return classifyTransport(err)
			}

			resp, err := c.client.Chat.Completions.New(callCtx, params)
			if err != nil {
				return c.classify(err)
			}
			completion = resp
			return nil
		},
		retry.Context(callCtx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(10*time.Second),
		retry.LastErrorOnly(true),
	)

	if err != nil {
		result.Success = false
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	if len(completion.Choices) == 0 {
		result.Success = false
		result.ErrorMessage = "no choices in response"
		result.ExecutionTime = time.Since(start)
		return result, fmt.Errorf("%w: no choices in response", ErrUpstream)
	}

	result.Success = true
	result.Content = completion.Choices[0].Message.Content
	result.ModelUsed = completion.Model
	result.PromptTokens = int(completion.Usage.PromptTokens)
	result.CompletionTokens = int(completion.Usage.CompletionTokens)
	result.TotalTokens = int(completion.Usage.TotalTokens)
	result.ExecutionTime = time.Since(start)

	return result, nil
}

// classify maps SDK errors to the provider error kinds. Rate limits and
// server errors stay retryable; other API errors (auth, bad request) are
// marked unrecoverable so retry.Do gives up immediately.
func (c *GroqClient) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		classified := classifyStatus(apiErr.StatusCode, err)
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return classified
		}
		return retry.Unrecoverable(classified)
	}
	return classifyTransport(err)
}

// Verify interface
var _ LLMClient = (*GroqClient)(nil)
