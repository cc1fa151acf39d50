package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"llm_dispatch/internal/models"
)

// TokenCipher encrypts credential tokens before they are persisted.
// *secrets.Cipher satisfies it.
type TokenCipher interface {
	Encrypt(plaintext []byte) (string, error)
}

// CredentialRepository stores provider API tokens and git tokens encrypted
// at rest. Lookups return ciphertext only; decryption happens in the
// dispatch gateway at the point of use.
type CredentialRepository struct {
	db     *DB
	cipher TokenCipher
}

// NewCredentialRepository creates a credential repository.
func NewCredentialRepository(db *DB, cipher TokenCipher) *CredentialRepository {
	return &CredentialRepository{db: db, cipher: cipher}
}

// SaveProviderToken encrypts and upserts the API token for a provider.
// Encryption happens before any write: if it fails the save is rejected with
// ErrEncryptProviderToken and no row is touched.
func (r *CredentialRepository) SaveProviderToken(ctx context.Context, provider, name, token string) (*models.ProviderCredential, error) {
	ciphertext, err := r.cipher.Encrypt([]byte(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptProviderToken, err)
	}

	cred := &models.ProviderCredential{
		ID:             uuid.New(),
		Provider:       provider,
		Name:           name,
		EncryptedToken: ciphertext,
	}

	query := `
		INSERT INTO provider_credentials (id, provider, name, encrypted_token)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider) DO UPDATE
		SET name = EXCLUDED.name,
		    encrypted_token = EXCLUDED.encrypted_token,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = r.db.conn.QueryRowxContext(ctx, query, cred.ID, cred.Provider, cred.Name, cred.EncryptedToken).
		Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save provider credential: %w", err)
	}

	return cred, nil
}

// GetProviderToken returns the stored ciphertext for a provider.
func (r *CredentialRepository) GetProviderToken(ctx context.Context, provider string) (string, error) {
	var ciphertext string
	query := `SELECT encrypted_token FROM provider_credentials WHERE provider = $1`

	err := r.db.conn.GetContext(ctx, &ciphertext, query, provider)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrCredentialNotFound
		}
		return "", fmt.Errorf("failed to get provider credential: %w", err)
	}

	return ciphertext, nil
}

// ListProviders returns the providers that have a stored credential.
func (r *CredentialRepository) ListProviders(ctx context.Context) ([]*models.ProviderCredential, error) {
	query := `
		SELECT id, provider, name, encrypted_token, created_at, updated_at
		FROM provider_credentials
		ORDER BY provider
	`

	var creds []*models.ProviderCredential
	if err := r.db.conn.SelectContext(ctx, &creds, query); err != nil {
		return nil, fmt.Errorf("failed to list provider credentials: %w", err)
	}
	return creds, nil
}

// DeleteProviderToken removes the stored credential for a provider.
func (r *CredentialRepository) DeleteProviderToken(ctx context.Context, provider string) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM provider_credentials WHERE provider = $1`, provider)
	if err != nil {
		return fmt.Errorf("failed to delete provider credential: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// SaveGitToken encrypts and upserts the access token for a git remote.
// Like SaveProviderToken, an encryption failure rejects the save atomically
// with ErrEncryptGitToken; a plaintext fallback is never persisted.
func (r *CredentialRepository) SaveGitToken(ctx context.Context, remoteURL, token string) (*models.GitCredential, error) {
	ciphertext, err := r.cipher.Encrypt([]byte(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptGitToken, err)
	}

	cred := &models.GitCredential{
		ID:             uuid.New(),
		RemoteURL:      remoteURL,
		EncryptedToken: ciphertext,
	}

	query := `
		INSERT INTO git_credentials (id, remote_url, encrypted_token)
		VALUES ($1, $2, $3)
		ON CONFLICT (remote_url) DO UPDATE
		SET encrypted_token = EXCLUDED.encrypted_token,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = r.db.conn.QueryRowxContext(ctx, query, cred.ID, cred.RemoteURL, cred.EncryptedToken).
		Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save git credential: %w", err)
	}

	return cred, nil
}

// GetGitToken returns the stored ciphertext for a git remote.
func (r *CredentialRepository) GetGitToken(ctx context.Context, remoteURL string) (string, error) {
	var ciphertext string
	query := `SELECT encrypted_token FROM git_credentials WHERE remote_url = $1`

	err := r.db.conn.GetContext(ctx, &ciphertext, query, remoteURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrCredentialNotFound
		}
		return "", fmt.Errorf("failed to get git credential: %w", err)
	}

	return ciphertext, nil
}
