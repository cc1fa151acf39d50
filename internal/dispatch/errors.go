package dispatch

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a dispatch failure. Callers (usage metering, UI
// messaging) branch on the kind, so every terminal failure carries exactly
// one.
type ErrorKind string

const (
	// KindCredential means the stored secret could not be decrypted.
	// Fatal for the call; no network request is made.
	KindCredential ErrorKind = "credential"

	// KindValidation means the payload was missing fields required by the
	// chosen endpoint kind. Caller programming error, never retried.
	KindValidation ErrorKind = "validation"

	// KindTimeout means no response arrived within the resolved timeout.
	KindTimeout ErrorKind = "timeout"

	// KindTransport means a connection-level failure (DNS, refused, reset).
	KindTransport ErrorKind = "transport"

	// KindProviderClient means the provider rejected the request as
	// malformed or unauthorized. Not recoverable by a different path.
	KindProviderClient ErrorKind = "provider_client"

	// KindProviderServer means a provider-side failure.
	KindProviderServer ErrorKind = "provider_server"

	// KindMalformedResponse means a success status with an unparsable body.
	// Treated like a provider server error for fallback purposes.
	KindMalformedResponse ErrorKind = "malformed_response"
)

// StatusMalformedPayload is the sentinel status attached to malformed
// response errors, distinguishing them from genuine HTTP statuses.
const StatusMalformedPayload = 599

// Error is the typed failure returned by the gateway. The body and cause
// reference only provider output; credentials never appear here.
type Error struct {
	Kind       ErrorKind
	Provider   string
	Endpoint   EndpointKind
	StatusCode int           // set for provider errors
	Body       []byte        // provider response body, if any
	Elapsed    time.Duration // set for timeouts
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	switch {
	case e.Provider != "" && e.Endpoint != "":
		return fmt.Sprintf("dispatch %s/%s: %s", e.Provider, e.Endpoint, msg)
	case e.Provider != "":
		return fmt.Sprintf("dispatch %s: %s", e.Provider, msg)
	}
	return fmt.Sprintf("dispatch: %s", msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether a fallback step may be attempted after this
// failure. Client-fault rejections and validation failures are not
// recoverable by trying a different transport path.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindTransport, KindProviderServer, KindMalformedResponse:
		return true
	}
	return false
}

// AsError unwraps err into a *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
