package token

import (
	"bytes"
	"fmt"
)

// Secret is the shared HMAC key. It is immutable once built and never prints
// its contents.
type Secret struct {
	key []byte
}

// NewSecret copies key into a Secret. An empty key yields a zero Secret,
// which Issuers refuse and Verifiers treat as unavailable.
func NewSecret(key []byte) Secret {
	if len(key) == 0 {
		return Secret{}
	}
	return Secret{key: bytes.Clone(key)}
}

// IsZero reports whether no key is configured.
func (s Secret) IsZero() bool {
	return len(s.key) == 0
}

// Len returns the key length in bytes.
func (s Secret) Len() int {
	return len(s.key)
}

// String returns a placeholder; the key is never rendered.
func (s Secret) String() string {
	if s.IsZero() {
		return "[EMPTY]"
	}
	return "[REDACTED]"
}

// GoString keeps %#v from dumping the key.
func (s Secret) GoString() string {
	return "token.Secret(" + s.String() + ")"
}

// Format covers every fmt verb, including %x and %s.
func (s Secret) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = f.Write([]byte(s.GoString()))
		return
	}
	_, _ = f.Write([]byte(s.String()))
}

// MarshalText keeps encoders (JSON, YAML, structured logs) from emitting the key.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
