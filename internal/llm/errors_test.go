package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{401, ErrUnauthorized},
		{403, ErrUnauthorized},
		{429, ErrRateLimited},
		{500, ErrUnavailable},
		{502, ErrUnavailable},
		{503, ErrUnavailable},
		{400, ErrInvalidResponse},
		{404, ErrInvalidResponse},
		{422, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			perr := classifyStatus("p", tt.status, errors.New("boom"))
			if perr.Kind != tt.kind {
				t.Errorf("classifyStatus(%d) kind = %s, want %s", tt.status, perr.Kind, tt.kind)
			}
			if perr.Provider != "p" {
				t.Errorf("classifyStatus(%d) provider = %s, want p", tt.status, perr.Provider)
			}
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	deadline := classifyTransport("p", context.DeadlineExceeded)
	if deadline.Kind != ErrTimeout {
		t.Errorf("deadline exceeded classified as %s, want %s", deadline.Kind, ErrTimeout)
	}

	network := classifyTransport("p", errors.New("connection refused"))
	if network.Kind != ErrUnavailable {
		t.Errorf("network error classified as %s, want %s", network.Kind, ErrUnavailable)
	}
}

func TestProviderErrorTransient(t *testing.T) {
	tests := []struct {
		kind      ErrorKind
		transient bool
	}{
		{ErrTimeout, true},
		{ErrRateLimited, true},
		{ErrUnavailable, true},
		{ErrUnauthorized, false},
		{ErrInvalidResponse, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			perr := &ProviderError{Provider: "p", Kind: tt.kind}
			if got := perr.Transient(); got != tt.transient {
				t.Errorf("Transient() for %s = %v, want %v", tt.kind, got, tt.transient)
			}
		})
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	perr := &ProviderError{Provider: "p", Kind: ErrUnavailable, Err: cause}
	if !errors.Is(perr, cause) {
		t.Error("expected ProviderError to unwrap to its cause")
	}
}
