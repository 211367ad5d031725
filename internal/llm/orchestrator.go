package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultRateLimitDelay is the pause before retrying a provider that
// signalled throttling. Other transient failures retry immediately.
const DefaultRateLimitDelay = 500 * time.Millisecond

// Result is one usable AI reply, tagged with the provider that produced it.
type Result struct {
	Text     string
	Provider string
}

// AllProvidersFailedError is the terminal orchestration failure: every
// configured provider exhausted its attempts. Failures holds the last
// ProviderError per provider for diagnostics.
type AllProvidersFailedError struct {
	Failures map[string]*ProviderError
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for name, perr := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", name, perr.Kind))
	}
	sort.Strings(parts)
	return "all providers failed: " + strings.Join(parts, "; ")
}

// Entry binds a provider to its fallback policy.
type Entry struct {
	Provider   Provider
	Priority   int // lower value is tried first
	MaxRetries int // extra attempts after the first, transient failures only
}

// Orchestrator produces exactly one reply per request by trying providers in
// priority order with a bounded per-provider retry budget. Attempts are
// strictly sequential: one provider call in flight at a time.
type Orchestrator struct {
	entries        []Entry
	rateLimitDelay time.Duration
}

// NewOrchestrator sorts entries by ascending priority (stable, so ties keep
// configuration order). A non-positive rateLimitDelay falls back to
// DefaultRateLimitDelay.
func NewOrchestrator(entries []Entry, rateLimitDelay time.Duration) *Orchestrator {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	if rateLimitDelay <= 0 {
		rateLimitDelay = DefaultRateLimitDelay
	}

	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.Provider.Name()
	}
	log.Printf("[Orchestrator] fallback chain: %s", strings.Join(names, " -> "))

	return &Orchestrator{entries: sorted, rateLimitDelay: rateLimitDelay}
}

// Generate returns the first usable reply across the fallback chain, or an
// *AllProvidersFailedError once every provider is exhausted. Individual
// attempt failures are logged here and never surfaced to the caller.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	failures := make(map[string]*ProviderError, len(o.entries))

	for _, entry := range o.entries {
		name := entry.Provider.Name()

		for attempt := 1; attempt <= entry.MaxRetries+1; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("orchestration cancelled: %w", err)
			}

			start := time.Now()
			text, err := entry.Provider.Generate(ctx, req)
			if err == nil {
				log.Printf("[Orchestrator] provider %s succeeded on attempt %d in %s", name, attempt, time.Since(start).Round(time.Millisecond))
				return &Result{Text: text, Provider: name}, nil
			}

			var perr *ProviderError
			if !errors.As(err, &perr) {
				// Raw context errors mean the caller went away mid-attempt.
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, fmt.Errorf("orchestration cancelled: %w", ctxErr)
				}
				perr = &ProviderError{Provider: name, Kind: ErrUnavailable, Err: err}
			}
			failures[name] = perr

			log.Warnf("[Orchestrator] provider %s attempt %d/%d failed (%s) after %s: %v",
				name, attempt, entry.MaxRetries+1, perr.Kind, time.Since(start).Round(time.Millisecond), perr.Err)

			if !perr.Transient() {
				// Unauthorized or malformed responses will not improve on
				// retry; fall through to the next provider immediately.
				break
			}

			if attempt <= entry.MaxRetries && perr.Kind == ErrRateLimited {
				select {
				case <-time.After(o.rateLimitDelay):
				case <-ctx.Done():
					return nil, fmt.Errorf("orchestration cancelled: %w", ctx.Err())
				}
			}
		}
	}

	return nil, &AllProvidersFailedError{Failures: failures}
}
