// Package models defines the database records the gateway reads and writes.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderCredential is a stored API key for one LLM provider. The token is
// encrypted before it reaches this struct; plaintext never touches the
// database or any log.
type ProviderCredential struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Provider       string    `db:"provider" json:"provider"`
	Name           string    `db:"name" json:"name"`
	EncryptedToken string    `db:"encrypted_token" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// GitCredential is a stored access token for a git remote, used by the
// project-scaffolding side of the application. Encrypted at rest like
// provider credentials.
type GitCredential struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RemoteURL      string    `db:"remote_url" json:"remote_url"`
	EncryptedToken string    `db:"encrypted_token" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
