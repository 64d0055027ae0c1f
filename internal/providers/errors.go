package providers

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUpstream indicates a network, auth or model failure at the LLM
	// provider.
	ErrUpstream = errors.New("upstream LLM failure")

	// ErrRateLimited indicates the provider rejected the request with a
	// rate limit (HTTP 429) or the call exceeded its deadline.
	ErrRateLimited = errors.New("rate limited")
)

// classifyStatus wraps an error with the sentinel matching an HTTP status
// from the provider.
func classifyStatus(status int, err error) error {
	if status == 429 {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// classifyTransport wraps transport-level failures. Deadline expiry is
// treated as a rate-limit-class failure per the workflow's error policy.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
