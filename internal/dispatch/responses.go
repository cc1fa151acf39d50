package dispatch

import (
	"encoding/json"
	"strings"
)

// responsesAdapter speaks the single-shot "responses" wire shape: an "input"
// value posted to /responses, generated text under "output_text" (or the
// structured "output" list) with input/output token usage.
type responsesAdapter struct{}

func (responsesAdapter) Kind() EndpointKind { return EndpointResponses }

func (a responsesAdapter) BuildRequest(profile Profile, secret Secret, payload map[string]any) (*WireRequest, error) {
	input, err := a.inputFrom(profile, payload)
	if err != nil {
		return nil, err
	}

	wire := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		if k == "messages" || k == "max_tokens" {
			continue
		}
		wire[k] = v
	}
	wire["input"] = input
	if wire["model"] == nil {
		wire["model"] = profile.Model
	}
	// The responses family names the output cap differently.
	if v, ok := payload["max_tokens"]; ok && wire["max_output_tokens"] == nil {
		wire["max_output_tokens"] = v
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, &Error{
			Kind:     KindValidation,
			Provider: profile.Provider,
			Endpoint: EndpointResponses,
			Message:  "payload is not serializable",
			Cause:    err,
		}
	}

	return buildWireRequest(profile, secret, "/responses", body), nil
}

// inputFrom extracts the prompt from the payload. A chat-shaped payload is
// flattened into a single input string so a fallback step can switch to
// this family without the caller resubmitting.
func (responsesAdapter) inputFrom(profile Profile, payload map[string]any) (any, error) {
	if input, ok := payload["input"]; ok {
		if s, isStr := input.(string); isStr && s == "" {
			return nil, &Error{
				Kind:     KindValidation,
				Provider: profile.Provider,
				Endpoint: EndpointResponses,
				Message:  "'input' must not be empty",
			}
		}
		return input, nil
	}

	messages, ok := payload["messages"].([]any)
	if !ok || len(messages) == 0 {
		return nil, &Error{
			Kind:     KindValidation,
			Provider: profile.Provider,
			Endpoint: EndpointResponses,
			Message:  "payload requires 'input' or 'messages'",
		}
	}

	var parts []string
	for _, raw := range messages {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if content, ok := m["content"].(string); ok && content != "" {
			parts = append(parts, content)
		}
	}
	if len(parts) == 0 {
		return nil, &Error{
			Kind:     KindValidation,
			Provider: profile.Provider,
			Endpoint: EndpointResponses,
			Message:  "'messages' carries no textual content",
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (responsesAdapter) ParseResponse(body []byte) (*Response, error) {
	var wire struct {
		ID         string `json:"id"`
		Model      string `json:"model"`
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
			TotalTokens  int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, malformedResponse(EndpointResponses, body, err)
	}

	content := wire.OutputText
	if content == "" {
		for _, item := range wire.Output {
			for _, c := range item.Content {
				if c.Type == "output_text" || c.Type == "text" {
					content += c.Text
				}
			}
		}
	}
	if content == "" && len(wire.Output) == 0 {
		return nil, malformedResponse(EndpointResponses, body, nil)
	}

	return &Response{
		ID:      wire.ID,
		Model:   wire.Model,
		Content: content,
		Usage: Usage{
			InputTokens:  wire.Usage.InputTokens,
			OutputTokens: wire.Usage.OutputTokens,
			TotalTokens:  wire.Usage.TotalTokens,
		},
	}, nil
}
