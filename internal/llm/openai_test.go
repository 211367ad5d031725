package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chatCompletionJSON(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "test-model",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}]
	}`, content)
}

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIProvider(ProviderConfig{
		Name:    "openai-test",
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: timeout,
	})
}

func TestOpenAIGenerateSuccess(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionJSON("  a calm reply  "))
	}, time.Second)

	text, err := p.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "a calm reply" {
		t.Errorf("got %q, want surrounding whitespace trimmed", text)
	}
}

func TestOpenAIGenerateEmptyReply(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionJSON("   "))
	}, time.Second)

	_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Kind != ErrInvalidResponse {
		t.Errorf("got kind %s, want %s", perr.Kind, ErrInvalidResponse)
	}
}

func TestOpenAIGenerateErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusBadRequest, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error": {"message": "nope", "type": "test_error"}}`)
			}, time.Second)

			_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
			var perr *ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("status %d classified as %s, want %s", tt.status, perr.Kind, tt.kind)
			}
		})
	}
}

func TestOpenAIGenerateTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Kind != ErrTimeout {
		t.Errorf("got kind %s, want %s", perr.Kind, ErrTimeout)
	}
}

func TestOpenAIGenerateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches for client disconnect;
		// otherwise r.Context() is never cancelled and Cleanup hangs.
		io.Copy(io.Discard, r.Body)
		cancel()
		<-r.Context().Done()
	}, time.Second)

	_, err := p.Generate(ctx, GenerateRequest{Prompt: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// Cancellation must not be dressed up as a provider failure.
	var perr *ProviderError
	if errors.As(err, &perr) {
		t.Errorf("cancellation was classified as ProviderError kind %s", perr.Kind)
	}
}
