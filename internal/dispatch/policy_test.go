package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolverDefaults(t *testing.T) {
	r := NewResolver(60*time.Second, 120*time.Second)

	assert.Equal(t, 60*time.Second, r.Timeout(EndpointChatCompletions))
	assert.Equal(t, 120*time.Second, r.Timeout(EndpointResponses))
}

func TestResolverFallbackOverride(t *testing.T) {
	r := NewResolver(60*time.Second, 120*time.Second)

	t.Setenv(FallbackTimeoutEnv, "45000")

	// The override is scoped to the fallback-path family.
	assert.Equal(t, 45000*time.Millisecond, r.Timeout(EndpointResponses))
	assert.Equal(t, 60*time.Second, r.Timeout(EndpointChatCompletions))
}

func TestResolverOverrideReadPerCall(t *testing.T) {
	r := NewResolver(60*time.Second, 120*time.Second)

	assert.Equal(t, 120*time.Second, r.Timeout(EndpointResponses))

	t.Setenv(FallbackTimeoutEnv, "45000")
	assert.Equal(t, 45*time.Second, r.Timeout(EndpointResponses))

	t.Setenv(FallbackTimeoutEnv, "1000")
	assert.Equal(t, 1*time.Second, r.Timeout(EndpointResponses))
}

func TestResolverIgnoresBadOverride(t *testing.T) {
	r := NewResolver(60*time.Second, 120*time.Second)

	for _, raw := range []string{"not-a-number", "-500", "0", "45.5", ""} {
		t.Setenv(FallbackTimeoutEnv, raw)
		assert.Equal(t, 120*time.Second, r.Timeout(EndpointResponses), "override %q should be ignored", raw)
	}
}

func TestResolverUnknownKindFallsBackToDefault(t *testing.T) {
	r := NewResolver(0, 0)

	assert.Equal(t, defaultTimeout, r.Timeout(EndpointChatCompletions))
	assert.Equal(t, defaultTimeout, r.Timeout(EndpointKind("bogus")))
}
