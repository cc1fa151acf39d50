package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"llm_dispatch/internal/storage"
)

type saveProviderCredentialRequest struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}

type saveGitCredentialRequest struct {
	RemoteURL string `json:"remote_url"`
	Token     string `json:"token"`
}

// handleSaveProviderCredential stores a provider API token encrypted at
// rest. When the encryption step fails the save is rejected outright; no
// plaintext fallback is persisted.
func (d *Dependencies) handleSaveProviderCredential(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req saveProviderCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Provider == "" || req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "missing 'provider' or 'token'")
		return
	}

	cred, err := d.Credentials.SaveProviderToken(r.Context(), req.Provider, req.Name, req.Token)
	if err != nil {
		if errors.Is(err, storage.ErrEncryptProviderToken) {
			respondWithError(w, http.StatusInternalServerError, storage.ErrEncryptProviderToken.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "failed to save credential")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, cred)
}

// handleSaveGitCredential stores a git remote token, with the same atomic
// reject-on-encryption-failure contract as provider tokens.
func (d *Dependencies) handleSaveGitCredential(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req saveGitCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RemoteURL == "" || req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "missing 'remote_url' or 'token'")
		return
	}

	cred, err := d.Credentials.SaveGitToken(r.Context(), req.RemoteURL, req.Token)
	if err != nil {
		if errors.Is(err, storage.ErrEncryptGitToken) {
			respondWithError(w, http.StatusInternalServerError, storage.ErrEncryptGitToken.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "failed to save credential")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, cred)
}
