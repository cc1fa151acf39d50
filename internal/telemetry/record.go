// Package telemetry moves dispatch outcome records from the request path to
// durable storage without blocking dispatches. Records reference only
// non-sensitive fields: provider identity, endpoint kind, model, elapsed
// time, outcome, and token counts. Payloads and credentials never enter this
// package.
package telemetry

import (
	"time"

	"llm_dispatch/internal/dispatch"
	"llm_dispatch/internal/models"
)

// NewRecord builds a dispatch record from a finished call. resp is nil for
// failures; err is nil for successes.
func NewRecord(requestID string, profile dispatch.Profile, kind dispatch.EndpointKind, elapsed time.Duration, resp *dispatch.Response, err error) *models.DispatchRecord {
	record := &models.DispatchRecord{
		RequestID:    requestID,
		Provider:     profile.Provider,
		EndpointKind: string(kind),
		Model:        profile.Model,
		ElapsedMs:    elapsed.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	if err == nil {
		record.Outcome = models.OutcomeSuccess
		if resp != nil {
			record.Model = resp.Model
			record.InputTokens = resp.Usage.InputTokens
			record.OutputTokens = resp.Usage.OutputTokens
		}
		return record
	}

	record.Outcome = outcomeFor(err)
	if de, ok := dispatch.AsError(err); ok {
		record.StatusCode = de.StatusCode
	}
	return record
}

func outcomeFor(err error) string {
	de, ok := dispatch.AsError(err)
	if !ok {
		return models.OutcomeTransport
	}
	switch de.Kind {
	case dispatch.KindCredential:
		return models.OutcomeCredential
	case dispatch.KindValidation:
		return models.OutcomeValidation
	case dispatch.KindTimeout:
		return models.OutcomeTimeout
	case dispatch.KindProviderClient:
		return models.OutcomeProviderClient
	case dispatch.KindProviderServer:
		return models.OutcomeProviderServer
	case dispatch.KindMalformedResponse:
		return models.OutcomeMalformedResponse
	}
	return models.OutcomeTransport
}
