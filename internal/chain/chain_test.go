package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/alonmar/books-gen/internal/prompts/index"
	"github.com/alonmar/books-gen/internal/providers"
)

func TestChain_Text(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "  Once upon a time.  \n"

	c := New(mock, WithModel("test-model"), WithTemperature(0.5))
	got, err := c.Text(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if got != "Once upon a time." {
		t.Errorf("Text() = %q", got)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Model != "test-model" {
		t.Errorf("model not forwarded: %q", reqs[0].Model)
	}
	if len(reqs[0].Messages) != 2 || reqs[0].Messages[0].Role != "system" || reqs[0].Messages[1].Role != "user" {
		t.Errorf("unexpected message shape: %+v", reqs[0].Messages)
	}
}

func TestChain_Text_EmptyCompletion(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "   "

	c := New(mock)
	if _, err := c.Text(context.Background(), "s", "u"); !errors.Is(err, providers.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestChain_JSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{
			name:     "strict JSON",
			response: `{"chapters":[{"id":"1","title":"Uno","description":"Algo"}]}`,
		},
		{
			name:     "fenced JSON recovered",
			response: "Here you go:\n```json\n{\"chapters\":[{\"id\":\"1\",\"title\":\"Uno\",\"description\":\"Algo\"}]}\n```",
		},
		{
			name:     "prose only",
			response: "I cannot produce an index.",
			wantErr:  ErrMalformedIndex,
		},
		{
			name:     "schema violation",
			response: `{"chapters":[{"id":"1"}]}`,
			wantErr:  ErrMalformedIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := providers.NewMockClient()
			mock.ResponseText = tt.response

			c := New(mock)
			got, err := c.JSON(context.Background(), "s", "u", index.Schema)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("JSON() error = %v", err)
			}
			if len(got) == 0 {
				t.Error("expected parsed document")
			}
		})
	}
}

func TestChain_JSON_ProviderError(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	mock.FailErr = providers.ErrRateLimited

	c := New(mock)
	if _, err := c.JSON(context.Background(), "s", "u", index.Schema); !errors.Is(err, providers.ErrRateLimited) {
		t.Errorf("provider error should pass through, got %v", err)
	}
}
