// Package llm provides a uniform client over heterogeneous text-generation
// providers and a priority-ordered fallback orchestrator on top of them.
package llm

import (
	"context"
	"time"
)

// Turn is one prior exchange side passed as conversation context.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// GenerateRequest is one logical "generate a reply" request, independent of
// any provider's wire shape.
type GenerateRequest struct {
	System  string // base system prompt
	MoodTag string // optional self-reported mood, folded into the system prompt
	History []Turn // recent turns, oldest first
	Prompt  string // the user's new message
}

// Provider adapts one external text-generation API. Generate returns the
// reply text with surrounding whitespace trimmed, or a *ProviderError
// classifying the failure. Cancellation of ctx is returned as the context's
// own error, never as a *ProviderError.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ProviderConfig describes one configured provider instance. Loaded once at
// process start; read-only afterwards.
type ProviderConfig struct {
	Name       string        // instance name, e.g. "openai", "anthropic"
	Priority   int           // lower value is tried first
	APIKey     string
	BaseURL    string        // optional override for compatible endpoints
	Model      string
	Timeout    time.Duration // per-attempt budget
	MaxRetries int           // extra attempts after the first, transient failures only
	MaxTokens  int           // reply length cap, defaults to 1024
}

const (
	defaultMaxTokens      = 1024
	defaultAttemptTimeout = 30 * time.Second
)

// attemptTimeout returns the configured per-attempt budget, falling back to
// the default when unset.
func attemptTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultAttemptTimeout
	}
	return d
}

// systemPrompt folds the optional mood tag into the configured system prompt.
// Both provider families treat the system prompt the same way, so this lives
// here rather than per adapter.
func systemPrompt(req GenerateRequest) string {
	if req.MoodTag == "" {
		return req.System
	}
	if req.System == "" {
		return "The user tagged their current mood as: " + req.MoodTag + "."
	}
	return req.System + "\n\nThe user tagged their current mood as: " + req.MoodTag + "."
}
