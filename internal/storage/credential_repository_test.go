package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCipher struct{}

func (brokenCipher) Encrypt([]byte) (string, error) {
	return "", errors.New("nonce generation failed")
}

// A nil DB proves the save path never reaches the database when encryption
// fails; any write attempt would panic.
func TestSaveProviderTokenRejectsOnEncryptFailure(t *testing.T) {
	repo := NewCredentialRepository(nil, brokenCipher{})

	cred, err := repo.SaveProviderToken(context.Background(), "openai", "default", "sk-token")

	require.Error(t, err)
	assert.Nil(t, cred)
	assert.True(t, errors.Is(err, ErrEncryptProviderToken))
	assert.Contains(t, err.Error(), "failed to encrypt provider token")
}

func TestSaveGitTokenRejectsOnEncryptFailure(t *testing.T) {
	repo := NewCredentialRepository(nil, brokenCipher{})

	cred, err := repo.SaveGitToken(context.Background(), "https://github.com/acme/repo.git", "ghp_token")

	require.Error(t, err)
	assert.Nil(t, cred)
	assert.True(t, errors.Is(err, ErrEncryptGitToken))
	assert.Contains(t, err.Error(), "failed to encrypt git token")
}

func TestEncryptFailureMessageOmitsToken(t *testing.T) {
	repo := NewCredentialRepository(nil, brokenCipher{})

	_, err := repo.SaveProviderToken(context.Background(), "openai", "default", "sk-super-secret")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "sk-super-secret")
}
