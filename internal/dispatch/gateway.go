// Package dispatch turns a logical "call this model with this payload"
// request into a correctly-shaped, correctly-authenticated, correctly-timed
// outbound call to a third-party LLM API, and translates whatever comes back
// into one normalized result/error contract.
package dispatch

import (
	"context"

	"llm_dispatch/internal/utils"
)

// Decrypter decrypts stored credential ciphertexts. The gateway never
// persists secrets; it consumes decrypted values transiently, one call at a
// time. *secrets.Cipher satisfies this interface.
type Decrypter interface {
	Decrypt(ciphertext string) ([]byte, error)
}

// Gateway composes the policy resolver, endpoint adapters, and dispatcher
// behind the single entry point orchestration code calls. Each call is
// stateless with respect to other concurrent calls.
type Gateway struct {
	decrypter  Decrypter
	resolver   *Resolver
	dispatcher *Dispatcher
	fallbacks  []Step
	logger     *utils.Logger
}

// NewGateway wires a gateway. fallbacks is the ordered sequence of alternate
// (provider variant, endpoint kind) steps attempted after a retriable
// failure; a step with a zero profile reuses the caller's profile.
func NewGateway(decrypter Decrypter, resolver *Resolver, dispatcher *Dispatcher, fallbacks []Step) *Gateway {
	return &Gateway{
		decrypter:  decrypter,
		resolver:   resolver,
		dispatcher: dispatcher,
		fallbacks:  fallbacks,
		logger:     utils.NewLogger("gateway"),
	}
}

// DispatchRequest decrypts the credential, then walks the primary step and
// the configured fallback sequence until one step succeeds or a
// non-retriable failure occurs. Fallback steps are tried sequentially, never
// in parallel, and each re-resolves its own timeout. Exhausting the sequence
// returns the last outcome's typed error.
func (g *Gateway) DispatchRequest(ctx context.Context, profile Profile, ciphertext string, kind EndpointKind, payload map[string]any) (*Response, error) {
	plaintext, err := g.decrypter.Decrypt(ciphertext)
	if err != nil {
		return nil, &Error{
			Kind:     KindCredential,
			Provider: profile.Provider,
			Message:  "decryption error",
			Cause:    err,
		}
	}
	secret := NewSecret(string(plaintext))

	steps := g.steps(profile, kind)

	var last error
	for i, step := range steps {
		adapter, err := adapterFor(step.Kind)
		if err != nil {
			return nil, err
		}

		wire, err := adapter.BuildRequest(step.Profile, secret, payload)
		if err != nil {
			// Caller contract violation; surfaced immediately, never retried.
			return nil, err
		}

		timeout := g.resolver.Timeout(step.Kind)
		resp, err := g.dispatcher.Do(ctx, step.Profile, adapter, wire, timeout)
		if err == nil {
			return resp, nil
		}
		last = err

		de, ok := AsError(err)
		if !ok || !de.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			// Parent cancellation; no further steps.
			return nil, last
		}
		if i < len(steps)-1 {
			next := steps[i+1]
			g.logger.Warn("dispatch step failed, advancing to fallback",
				"provider", step.Profile.Provider,
				"endpoint", step.Kind,
				"failure", de.Kind,
				"next_provider", next.Profile.Provider,
				"next_endpoint", next.Kind,
			)
		}
	}
	return nil, last
}

// steps materializes the attempt sequence for one call: the primary step
// followed by the configured fallbacks, with zero-profile fallbacks bound to
// the caller's profile and steps identical to the primary dropped.
func (g *Gateway) steps(profile Profile, kind EndpointKind) []Step {
	steps := make([]Step, 0, 1+len(g.fallbacks))
	steps = append(steps, Step{Profile: profile, Kind: kind})

	for _, fb := range g.fallbacks {
		if fb.Profile.zero() {
			fb.Profile = profile
		}
		if fb.Profile == profile && fb.Kind == kind {
			continue
		}
		steps = append(steps, fb)
	}
	return steps
}
