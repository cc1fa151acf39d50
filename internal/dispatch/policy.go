package dispatch

import (
	"os"
	"strconv"
	"time"
)

// FallbackTimeoutEnv overrides the outbound timeout, in milliseconds, for
// endpoint kinds reached as the non-primary path.
const FallbackTimeoutEnv = "LLM_FALLBACK_TIMEOUT_MS"

const defaultTimeout = 60 * time.Second

// Resolver computes the effective request timeout for an endpoint kind from
// compiled-in defaults and environment overrides. It holds no mutable state
// and is safe for concurrent use.
type Resolver struct {
	defaults map[EndpointKind]time.Duration
}

// NewResolver builds a resolver with per-kind default timeouts.
func NewResolver(chat, responses time.Duration) *Resolver {
	return &Resolver{
		defaults: map[EndpointKind]time.Duration{
			EndpointChatCompletions: chat,
			EndpointResponses:       responses,
		},
	}
}

// Timeout returns the timeout to apply to an outbound call on kind.
//
// The environment override is read on every call, not cached, so operators
// and tests can change it without a restart. Values that do not parse as a
// positive integer are ignored; configuration must never fail a dispatch.
func (r *Resolver) Timeout(kind EndpointKind) time.Duration {
	d, ok := r.defaults[kind]
	if !ok || d <= 0 {
		d = defaultTimeout
	}

	if !kind.fallbackPath() {
		return d
	}

	raw := os.Getenv(FallbackTimeoutEnv)
	if raw == "" {
		return d
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return d
	}
	return time.Duration(ms) * time.Millisecond
}
