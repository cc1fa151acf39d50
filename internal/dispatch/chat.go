package dispatch

import (
	"encoding/json"
)

// chatAdapter speaks the chat-completions wire shape: a "messages" array of
// role/content pairs posted to /chat/completions, response under
// "choices[0].message.content" with prompt/completion token usage.
type chatAdapter struct{}

func (chatAdapter) Kind() EndpointKind { return EndpointChatCompletions }

func (a chatAdapter) BuildRequest(profile Profile, secret Secret, payload map[string]any) (*WireRequest, error) {
	messages, err := a.messagesFrom(profile, payload)
	if err != nil {
		return nil, err
	}

	wire := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		if k == "input" {
			continue
		}
		wire[k] = v
	}
	wire["messages"] = messages
	if wire["model"] == nil {
		wire["model"] = profile.Model
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, &Error{
			Kind:     KindValidation,
			Provider: profile.Provider,
			Endpoint: EndpointChatCompletions,
			Message:  "payload is not serializable",
			Cause:    err,
		}
	}

	return buildWireRequest(profile, secret, "/chat/completions", body), nil
}

// messagesFrom extracts the conversation from the payload. A payload shaped
// for the responses family (a plain "input" string) is translated into a
// single user message so a fallback step can switch kinds without the
// caller resubmitting.
func (chatAdapter) messagesFrom(profile Profile, payload map[string]any) ([]any, error) {
	if raw, ok := payload["messages"]; ok {
		messages, ok := raw.([]any)
		if !ok || len(messages) == 0 {
			return nil, &Error{
				Kind:     KindValidation,
				Provider: profile.Provider,
				Endpoint: EndpointChatCompletions,
				Message:  "'messages' must be a non-empty array",
			}
		}
		return messages, nil
	}

	if input, ok := payload["input"].(string); ok && input != "" {
		return []any{map[string]any{"role": "user", "content": input}}, nil
	}

	return nil, &Error{
		Kind:     KindValidation,
		Provider: profile.Provider,
		Endpoint: EndpointChatCompletions,
		Message:  "payload requires 'messages' or 'input'",
	}
}

func (chatAdapter) ParseResponse(body []byte) (*Response, error) {
	var wire struct {
		ID      string `json:"id"`
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, malformedResponse(EndpointChatCompletions, body, err)
	}
	if len(wire.Choices) == 0 {
		return nil, malformedResponse(EndpointChatCompletions, body, nil)
	}

	return &Response{
		ID:      wire.ID,
		Model:   wire.Model,
		Content: wire.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  wire.Usage.PromptTokens,
			OutputTokens: wire.Usage.CompletionTokens,
			TotalTokens:  wire.Usage.TotalTokens,
		},
	}, nil
}

// malformedResponse builds the sentinel-status error for a success-status
// body that could not be normalized.
func malformedResponse(kind EndpointKind, body []byte, cause error) *Error {
	return &Error{
		Kind:       KindMalformedResponse,
		Endpoint:   kind,
		StatusCode: StatusMalformedPayload,
		Body:       body,
		Message:    "unparsable provider response",
		Cause:      cause,
	}
}
