package dispatch

import (
	"fmt"
	"net/http"
	"strings"
)

// WireRequest is a fully prepared provider HTTP call. The credential only
// ever appears in the authentication header the wire protocol requires.
type WireRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Adapter hides provider- and endpoint-family-specific field names,
// authentication conventions, and response envelopes behind the generic
// request/response shapes. One implementation exists per EndpointKind.
type Adapter interface {
	// Kind returns the endpoint family this adapter speaks.
	Kind() EndpointKind

	// BuildRequest validates the payload and produces the wire request.
	// Missing required fields fail fast with a validation error rather
	// than sending a malformed request.
	BuildRequest(profile Profile, secret Secret, payload map[string]any) (*WireRequest, error)

	// ParseResponse normalizes a success-status body. An unparsable body
	// yields a malformed-response error.
	ParseResponse(body []byte) (*Response, error)
}

// adapterFor selects the adapter for an endpoint kind by static dispatch
// over the closed enumeration.
func adapterFor(kind EndpointKind) (Adapter, error) {
	switch kind {
	case EndpointChatCompletions:
		return chatAdapter{}, nil
	case EndpointResponses:
		return responsesAdapter{}, nil
	}
	return nil, &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("unsupported endpoint kind %q", kind),
	}
}

// buildWireRequest assembles the method, URL, and headers shared by all
// endpoint families. The path is appended to the profile's base URL.
func buildWireRequest(profile Profile, secret Secret, path string, body []byte) *WireRequest {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+secret.Reveal())

	return &WireRequest{
		Method: http.MethodPost,
		URL:    strings.TrimRight(profile.APIURL, "/") + path,
		Header: header,
		Body:   body,
	}
}
