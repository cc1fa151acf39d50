package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm_dispatch/internal/dispatch"
	"llm_dispatch/internal/models"
	"llm_dispatch/internal/storage"
)

type stubGateway struct {
	resp *dispatch.Response
	err  error

	lastProfile dispatch.Profile
	lastKind    dispatch.EndpointKind
}

func (g *stubGateway) DispatchRequest(ctx context.Context, profile dispatch.Profile, ciphertext string, kind dispatch.EndpointKind, payload map[string]any) (*dispatch.Response, error) {
	g.lastProfile = profile
	g.lastKind = kind
	return g.resp, g.err
}

type stubCredentials struct {
	ciphertext string
	getErr     error
	saveErr    error
}

func (s *stubCredentials) SaveProviderToken(ctx context.Context, provider, name, token string) (*models.ProviderCredential, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return &models.ProviderCredential{Provider: provider, Name: name}, nil
}

func (s *stubCredentials) GetProviderToken(ctx context.Context, provider string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.ciphertext, nil
}

func (s *stubCredentials) SaveGitToken(ctx context.Context, remoteURL, token string) (*models.GitCredential, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return &models.GitCredential{RemoteURL: remoteURL}, nil
}

type stubQueue struct {
	mu      sync.Mutex
	records []*models.DispatchRecord
}

func (q *stubQueue) Enqueue(ctx context.Context, record *models.DispatchRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, record)
	return nil
}

func (q *stubQueue) enqueued() []*models.DispatchRecord {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records
}

func dispatchBody(kind string) string {
	return fmt.Sprintf(`{
		"provider": "openai",
		"api_url": "https://api.openai.com/v1",
		"model": "gpt-4o-mini",
		"endpoint_kind": %q,
		"payload": {"messages": [{"role": "user", "content": "hi"}]}
	}`, kind)
}

func postDispatch(t *testing.T, deps *Dependencies, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/dispatch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	deps.handleDispatch(rec, req)
	return rec
}

func TestHandleDispatchSuccess(t *testing.T) {
	gw := &stubGateway{resp: &dispatch.Response{
		ID:      "resp-1",
		Model:   "gpt-4o-mini",
		Content: "hello there",
		Usage:   dispatch.Usage{InputTokens: 5, OutputTokens: 7, TotalTokens: 12},
	}}
	queue := &stubQueue{}
	deps := &Dependencies{Gateway: gw, Credentials: &stubCredentials{ciphertext: "enc"}, Telemetry: queue}

	rec := postDispatch(t, deps, dispatchBody("chat_completions"))

	require.Equal(t, http.StatusOK, rec.Code)
	var out dispatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "hello there", out.Content)
	assert.Equal(t, 12, out.Usage.TotalTokens)
	assert.NotEmpty(t, out.RequestID)

	assert.Equal(t, dispatch.EndpointChatCompletions, gw.lastKind)
	assert.Equal(t, "openai", gw.lastProfile.Provider)

	records := queue.enqueued()
	require.Len(t, records, 1)
	assert.Equal(t, models.OutcomeSuccess, records[0].Outcome)
}

func TestHandleDispatchRejectsNonPost(t *testing.T) {
	deps := &Dependencies{Gateway: &stubGateway{}, Credentials: &stubCredentials{}}
	req := httptest.NewRequest(http.MethodGet, "/v1/dispatch", nil)
	rec := httptest.NewRecorder()

	deps.handleDispatch(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleDispatchValidation(t *testing.T) {
	deps := &Dependencies{Gateway: &stubGateway{}, Credentials: &stubCredentials{}}

	rec := postDispatch(t, deps, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postDispatch(t, deps, `{"endpoint_kind": "chat_completions"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postDispatch(t, deps, dispatchBody("streaming"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown endpoint kind")
}

func TestHandleDispatchUnknownProvider(t *testing.T) {
	deps := &Dependencies{
		Gateway:     &stubGateway{},
		Credentials: &stubCredentials{getErr: storage.ErrCredentialNotFound},
	}

	rec := postDispatch(t, deps, dispatchBody("chat_completions"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDispatchErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    *dispatch.Error
		status int
	}{
		{"credential", &dispatch.Error{Kind: dispatch.KindCredential, Message: "decryption error"}, http.StatusInternalServerError},
		{"validation", &dispatch.Error{Kind: dispatch.KindValidation, Message: "payload requires 'messages'"}, http.StatusBadRequest},
		{"timeout", &dispatch.Error{Kind: dispatch.KindTimeout}, http.StatusGatewayTimeout},
		{"provider client", &dispatch.Error{Kind: dispatch.KindProviderClient, StatusCode: 429}, http.StatusBadGateway},
		{"provider server", &dispatch.Error{Kind: dispatch.KindProviderServer, StatusCode: 500}, http.StatusBadGateway},
		{"malformed", &dispatch.Error{Kind: dispatch.KindMalformedResponse, StatusCode: dispatch.StatusMalformedPayload}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			queue := &stubQueue{}
			deps := &Dependencies{
				Gateway:     &stubGateway{err: tc.err},
				Credentials: &stubCredentials{ciphertext: "enc"},
				Telemetry:   queue,
			}

			rec := postDispatch(t, deps, dispatchBody("chat_completions"))
			assert.Equal(t, tc.status, rec.Code)

			records := queue.enqueued()
			require.Len(t, records, 1)
			assert.NotEqual(t, models.OutcomeSuccess, records[0].Outcome)
		})
	}
}

func TestHandleDispatchWorksWithoutTelemetry(t *testing.T) {
	gw := &stubGateway{resp: &dispatch.Response{ID: "resp-1", Content: "ok"}}
	deps := &Dependencies{Gateway: gw, Credentials: &stubCredentials{ciphertext: "enc"}}

	rec := postDispatch(t, deps, dispatchBody("chat_completions"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
