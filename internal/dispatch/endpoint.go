package dispatch

// EndpointKind enumerates the wire-shape families the gateway can target.
// A provider may expose more than one kind, and a fallback step may switch
// kinds while keeping the provider fixed, or vice versa.
type EndpointKind string

const (
	EndpointChatCompletions EndpointKind = "chat_completions"
	EndpointResponses       EndpointKind = "responses"
)

// Valid reports whether k is a member of the closed enumeration.
func (k EndpointKind) Valid() bool {
	switch k {
	case EndpointChatCompletions, EndpointResponses:
		return true
	}
	return false
}

// fallbackPath reports whether k is an endpoint family that is normally
// reached as the non-primary path. The fallback timeout override applies
// only to these kinds.
func (k EndpointKind) fallbackPath() bool {
	return k == EndpointResponses
}

// Profile describes one configured provider for a single call. It is
// supplied fresh on every invocation; the gateway caches nothing from it.
type Profile struct {
	Provider string // provider identity, e.g. "openai"
	APIURL   string // base URL of the provider API
	Model    string // provider-specific model name
}

// zero reports whether the profile carries no configuration at all.
// A zero profile in a fallback step means "reuse the primary profile".
func (p Profile) zero() bool {
	return p.Provider == "" && p.APIURL == "" && p.Model == ""
}

// Step is one entry in the ordered fallback sequence: a provider variant
// paired with the endpoint kind to try it on.
type Step struct {
	Profile Profile
	Kind    EndpointKind
}
