package dispatch

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponsesBuildRequest(t *testing.T) {
	adapter := responsesAdapter{}
	secret := NewSecret("sk-test-456")

	wire, err := adapter.BuildRequest(testProfile(), secret, map[string]any{
		"input": "hello there",
	})
	require.NoError(t, err)

	assert.Equal(t, "POST", wire.Method)
	assert.Equal(t, "https://api.example.com/v1/responses", wire.URL)
	assert.Equal(t, "Bearer sk-test-456", wire.Header.Get("Authorization"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(wire.Body, &body))
	assert.Equal(t, "hello there", body["input"])
	assert.Equal(t, "gpt-test", body["model"])
}

func TestResponsesBuildRequestFlattensMessages(t *testing.T) {
	adapter := responsesAdapter{}

	wire, err := adapter.BuildRequest(testProfile(), NewSecret("sk"), map[string]any{
		"messages": []any{
			map[string]any{"role": "system", "content": "be brief"},
			map[string]any{"role": "user", "content": "what is Go"},
		},
		"max_tokens": float64(64),
	})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(wire.Body, &body))
	assert.Equal(t, "be brief\nwhat is Go", body["input"])
	assert.Equal(t, float64(64), body["max_output_tokens"])
	assert.NotContains(t, body, "messages")
	assert.NotContains(t, body, "max_tokens")
}

func TestResponsesBuildRequestValidation(t *testing.T) {
	adapter := responsesAdapter{}

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"empty payload", map[string]any{}},
		{"empty input", map[string]any{"input": ""}},
		{"messages without content", map[string]any{"messages": []any{map[string]any{"role": "user"}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := adapter.BuildRequest(testProfile(), NewSecret("sk"), tc.payload)
			de, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, KindValidation, de.Kind)
		})
	}
}

// responsesWireBody serializes a normalized response the way the provider
// would.
func responsesWireBody(resp Response) []byte {
	body := fmt.Sprintf(`{
		"id": %q,
		"model": %q,
		"output_text": %q,
		"usage": {"input_tokens": %d, "output_tokens": %d, "total_tokens": %d}
	}`, resp.ID, resp.Model, resp.Content,
		resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)
	return []byte(body)
}

func TestResponsesParseResponseRoundTrip(t *testing.T) {
	adapter := responsesAdapter{}

	want := Response{
		ID:      "resp-7",
		Model:   "gpt-test",
		Content: "single shot output",
		Usage:   Usage{InputTokens: 5, OutputTokens: 9, TotalTokens: 14},
	}

	got, err := adapter.ParseResponse(responsesWireBody(want))
	require.NoError(t, err)
	assert.Equal(t, &want, got)
}

func TestResponsesParseStructuredOutput(t *testing.T) {
	adapter := responsesAdapter{}

	body := `{
		"id": "resp-8",
		"model": "gpt-test",
		"output": [{"content": [{"type": "output_text", "text": "part one "},
		                        {"type": "output_text", "text": "part two"}]}],
		"usage": {"input_tokens": 1, "output_tokens": 2, "total_tokens": 3}
	}`

	got, err := adapter.ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "part one part two", got.Content)
}

func TestResponsesParseResponseMalformed(t *testing.T) {
	adapter := responsesAdapter{}

	_, err := adapter.ParseResponse([]byte("<html>gateway error</html>"))
	de, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindMalformedResponse, de.Kind)
	assert.Equal(t, StatusMalformedPayload, de.StatusCode)
}
