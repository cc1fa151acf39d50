package dispatch

// Secret holds a decrypted provider credential for the lifetime of a single
// dispatch call. Default formatting redacts the value so a secret can never
// leak through logs or serialized results; the plaintext is only reachable
// through Reveal at the point the wire request is built.
type Secret struct {
	value string
}

// NewSecret wraps a decrypted credential value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the plaintext credential.
func (s Secret) Reveal() string {
	return s.value
}

func (s Secret) String() string {
	return "[redacted]"
}

func (s Secret) GoString() string {
	return "dispatch.Secret{[redacted]}"
}

// MarshalJSON keeps the credential out of any serialized structure.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[redacted]"`), nil
}
