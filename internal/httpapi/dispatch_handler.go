package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"llm_dispatch/internal/dispatch"
	"llm_dispatch/internal/storage"
	"llm_dispatch/internal/telemetry"
)

// dispatchRequest is the body of POST /v1/dispatch.
type dispatchRequest struct {
	Provider     string         `json:"provider"`
	APIURL       string         `json:"api_url"`
	Model        string         `json:"model"`
	EndpointKind string         `json:"endpoint_kind"`
	Payload      map[string]any `json:"payload"`
}

// dispatchResponse is the success body: the normalized result plus tracing
// fields.
type dispatchResponse struct {
	RequestID string `json:"request_id"`
	ID        string `json:"id"`
	Model     string `json:"model"`
	Content   string `json:"content"`
	Usage     struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// handleDispatch resolves the stored credential for the requested provider,
// hands the call to the gateway, and maps the typed error taxonomy onto
// HTTP statuses. A telemetry record is enqueued for every outcome.
func (d *Dependencies) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	reqID := uuid.New().String()

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Provider == "" || req.APIURL == "" {
		respondWithError(w, http.StatusBadRequest, "missing 'provider' or 'api_url'")
		return
	}
	kind := dispatch.EndpointKind(req.EndpointKind)
	if !kind.Valid() {
		respondWithError(w, http.StatusBadRequest, "unknown endpoint kind")
		return
	}

	ciphertext, err := d.Credentials.GetProviderToken(ctx, req.Provider)
	if err != nil {
		if errors.Is(err, storage.ErrCredentialNotFound) {
			respondWithError(w, http.StatusNotFound, "no credential stored for provider")
		} else {
			respondWithError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	profile := dispatch.Profile{
		Provider: req.Provider,
		APIURL:   req.APIURL,
		Model:    req.Model,
	}

	start := time.Now()
	resp, err := d.Gateway.DispatchRequest(ctx, profile, ciphertext, kind, req.Payload)
	elapsed := time.Since(start)

	d.enqueueRecord(reqID, profile, kind, elapsed, resp, err)

	if err != nil {
		status, message := statusForDispatchError(err)
		respondWithError(w, status, message)
		return
	}

	out := dispatchResponse{
		RequestID: reqID,
		ID:        resp.ID,
		Model:     resp.Model,
		Content:   resp.Content,
	}
	out.Usage.InputTokens = resp.Usage.InputTokens
	out.Usage.OutputTokens = resp.Usage.OutputTokens
	out.Usage.TotalTokens = resp.Usage.TotalTokens

	respondWithJSON(w, http.StatusOK, out)
}

func (d *Dependencies) enqueueRecord(reqID string, profile dispatch.Profile, kind dispatch.EndpointKind, elapsed time.Duration, resp *dispatch.Response, err error) {
	if d.Telemetry == nil {
		return
	}
	record := telemetry.NewRecord(reqID, profile, kind, elapsed, resp, err)
	// Best effort; telemetry must not fail a dispatch.
	_ = d.Telemetry.Enqueue(context.Background(), record)
}

// statusForDispatchError maps the dispatch error taxonomy onto the HTTP
// statuses the host application surfaces.
func statusForDispatchError(err error) (int, string) {
	de, ok := dispatch.AsError(err)
	if !ok {
		return http.StatusBadGateway, "dispatch failed"
	}
	switch de.Kind {
	case dispatch.KindCredential:
		return http.StatusInternalServerError, "credential decryption failed"
	case dispatch.KindValidation:
		return http.StatusBadRequest, de.Message
	case dispatch.KindTimeout:
		return http.StatusGatewayTimeout, "provider timed out"
	case dispatch.KindProviderClient:
		return http.StatusBadGateway, "provider rejected request"
	case dispatch.KindProviderServer, dispatch.KindMalformedResponse:
		return http.StatusBadGateway, "provider error"
	}
	return http.StatusBadGateway, "dispatch failed"
}
