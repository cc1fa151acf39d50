package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"llm_dispatch/internal/storage"
)

func putJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSaveProviderCredential(t *testing.T) {
	deps := &Dependencies{Credentials: &stubCredentials{}}

	rec := putJSON(t, deps.handleSaveProviderCredential, "/admin/credentials/provider",
		`{"provider": "openai", "name": "default", "token": "sk-token"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"provider":"openai"`)
	// The encrypted token column is never serialized.
	assert.NotContains(t, rec.Body.String(), "sk-token")
}

func TestSaveProviderCredentialRejectsBadInput(t *testing.T) {
	deps := &Dependencies{Credentials: &stubCredentials{}}

	req := httptest.NewRequest(http.MethodPost, "/admin/credentials/provider", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	deps.handleSaveProviderCredential(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = putJSON(t, deps.handleSaveProviderCredential, "/admin/credentials/provider", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = putJSON(t, deps.handleSaveProviderCredential, "/admin/credentials/provider",
		`{"provider": "openai"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveProviderCredentialEncryptFailure(t *testing.T) {
	deps := &Dependencies{Credentials: &stubCredentials{
		saveErr: fmt.Errorf("%w: nonce generation failed", storage.ErrEncryptProviderToken),
	}}

	rec := putJSON(t, deps.handleSaveProviderCredential, "/admin/credentials/provider",
		`{"provider": "openai", "token": "sk-token"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to encrypt provider token")
}

func TestSaveGitCredential(t *testing.T) {
	deps := &Dependencies{Credentials: &stubCredentials{}}

	rec := putJSON(t, deps.handleSaveGitCredential, "/admin/credentials/git",
		`{"remote_url": "https://github.com/acme/repo.git", "token": "ghp_token"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ghp_token")
}

func TestSaveGitCredentialEncryptFailure(t *testing.T) {
	deps := &Dependencies{Credentials: &stubCredentials{
		saveErr: fmt.Errorf("%w: nonce generation failed", storage.ErrEncryptGitToken),
	}}

	rec := putJSON(t, deps.handleSaveGitCredential, "/admin/credentials/git",
		`{"remote_url": "https://github.com/acme/repo.git", "token": "ghp_token"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to encrypt git token")
}

func TestSaveGitCredentialRejectsMissingFields(t *testing.T) {
	deps := &Dependencies{Credentials: &stubCredentials{}}

	rec := putJSON(t, deps.handleSaveGitCredential, "/admin/credentials/git",
		`{"remote_url": "https://github.com/acme/repo.git"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
