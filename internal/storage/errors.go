package storage

import "errors"

var (
	// ErrCredentialNotFound is returned when no credential row matches.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrEncryptProviderToken is the stable failure for a provider token
	// save whose encryption step failed. The save is rejected atomically;
	// nothing is persisted.
	ErrEncryptProviderToken = errors.New("failed to encrypt provider token")

	// ErrEncryptGitToken is the stable failure for a git token save whose
	// encryption step failed.
	ErrEncryptGitToken = errors.New("failed to encrypt git token")
)
