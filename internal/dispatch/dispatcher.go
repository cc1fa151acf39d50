package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"llm_dispatch/internal/utils"
)

// Dispatcher owns the outbound HTTP call. It applies the resolved timeout to
// the full round trip, classifies the outcome, and hands success bodies to
// the adapter for normalization. The underlying transport's connection pool
// is shared safely across concurrent calls.
type Dispatcher struct {
	client *http.Client
	logger *utils.Logger
}

// NewDispatcher creates a dispatcher with a pooled transport. No client-level
// timeout is set; each attempt derives its deadline from the caller context
// so parent cancellation propagates to the in-flight request.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: utils.NewLogger("dispatcher"),
	}
}

// Do sends the prepared wire request with the given timeout and returns
// either a normalized response or a typed error. Classification:
//
//	no response within timeout          -> timeout error with elapsed time
//	connection-level failure            -> transport error
//	4xx status                          -> provider client error
//	5xx status                          -> provider server error
//	2xx status, unparsable body         -> malformed-response error
func (d *Dispatcher) Do(ctx context.Context, profile Profile, adapter Adapter, req *WireRequest, timeout time.Duration) (*Response, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &Error{
			Kind:     KindTransport,
			Provider: profile.Provider,
			Endpoint: adapter.Kind(),
			Message:  "building request failed",
			Cause:    err,
		}
	}
	httpReq.Header = req.Header

	resp, err := d.client.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, d.classifyTransport(profile, adapter.Kind(), err, elapsed)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed = time.Since(start)
	if err != nil {
		return nil, d.classifyTransport(profile, adapter.Kind(), err, elapsed)
	}

	d.logger.Debug("provider call finished",
		"provider", profile.Provider,
		"endpoint", adapter.Kind(),
		"status", resp.StatusCode,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	switch {
	case resp.StatusCode >= 500:
		return nil, &Error{
			Kind:       KindProviderServer,
			Provider:   profile.Provider,
			Endpoint:   adapter.Kind(),
			StatusCode: resp.StatusCode,
			Body:       body,
			Message:    "provider server error",
		}
	case resp.StatusCode >= 400:
		return nil, &Error{
			Kind:       KindProviderClient,
			Provider:   profile.Provider,
			Endpoint:   adapter.Kind(),
			StatusCode: resp.StatusCode,
			Body:       body,
			Message:    "provider rejected request",
		}
	}

	normalized, err := adapter.ParseResponse(body)
	if err != nil {
		if de, ok := AsError(err); ok {
			de.Provider = profile.Provider
			de.Elapsed = elapsed
			return nil, de
		}
		return nil, err
	}
	return normalized, nil
}

// classifyTransport tells timeouts apart from connection-level failures.
// The attempt's own deadline reports as a timeout; every other failure,
// including a cancelled parent context, is a transport error.
func (d *Dispatcher) classifyTransport(profile Profile, kind EndpointKind, err error, elapsed time.Duration) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Kind:     KindTimeout,
			Provider: profile.Provider,
			Endpoint: kind,
			Elapsed:  elapsed,
			Message:  "no response within timeout",
			Cause:    err,
		}
	}
	return &Error{
		Kind:     KindTransport,
		Provider: profile.Provider,
		Endpoint: kind,
		Elapsed:  elapsed,
		Message:  "network failure",
		Cause:    err,
	}
}
