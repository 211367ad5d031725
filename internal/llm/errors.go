package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind categorizes provider failures for retry and fallback decisions.
type ErrorKind string

const (
	ErrUnauthorized    ErrorKind = "unauthorized"     // bad or missing credential
	ErrRateLimited     ErrorKind = "rate_limited"     // provider signalled throttling
	ErrInvalidResponse ErrorKind = "invalid_response" // malformed or empty payload
	ErrUnavailable     ErrorKind = "unavailable"      // network or server failure
	ErrTimeout         ErrorKind = "timeout"          // per-attempt budget exceeded
)

// ProviderError is the uniform failure result of one provider attempt.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports whether the failure may succeed on a retry of the same
// provider. Unauthorized and InvalidResponse never will; retrying them only
// burns the attempt budget.
func (e *ProviderError) Transient() bool {
	switch e.Kind {
	case ErrTimeout, ErrRateLimited, ErrUnavailable:
		return true
	default:
		return false
	}
}

// classifyStatus maps an HTTP status from a provider error body to a kind.
func classifyStatus(provider string, status int, err error) *ProviderError {
	var kind ErrorKind
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrUnauthorized
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case status >= 500:
		kind = ErrUnavailable
	case status >= 400:
		// Request shape rejected; not transient, move to the next provider.
		kind = ErrInvalidResponse
	default:
		kind = ErrUnavailable
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// classifyTransport maps non-HTTP failures (deadline, connection refused,
// DNS) to a kind. Callers must weed out context.Canceled first.
func classifyTransport(provider string, err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Kind: ErrTimeout, Err: err}
	}
	return &ProviderError{Provider: provider, Kind: ErrUnavailable, Err: err}
}
