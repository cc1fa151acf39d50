package models

import (
	"time"

	"github.com/google/uuid"
)

// DispatchRecord is one row of dispatch telemetry. Only non-sensitive fields
// are recorded: provider identity, endpoint kind, elapsed time, outcome, and
// token counts. Payloads and credentials never appear here.
type DispatchRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RequestID    string    `db:"request_id" json:"request_id"`
	Provider     string    `db:"provider" json:"provider"`
	EndpointKind string    `db:"endpoint_kind" json:"endpoint_kind"`
	Model        string    `db:"model" json:"model"`
	Outcome      string    `db:"outcome" json:"outcome"`
	StatusCode   int       `db:"status_code" json:"status_code"`
	ElapsedMs    int64     `db:"elapsed_ms" json:"elapsed_ms"`
	InputTokens  int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens int       `db:"output_tokens" json:"output_tokens"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Usage is an aggregated token count pair for one provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// OutcomeSuccess and friends are the stable outcome labels written to
// telemetry. They mirror the dispatch error kinds plus success.
const (
	OutcomeSuccess           = "success"
	OutcomeCredential        = "credential"
	OutcomeValidation        = "validation"
	OutcomeTimeout           = "timeout"
	OutcomeTransport         = "transport"
	OutcomeProviderClient    = "provider_client"
	OutcomeProviderServer    = "provider_server"
	OutcomeMalformedResponse = "malformed_response"
)
