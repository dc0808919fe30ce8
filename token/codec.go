package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// segmentEncoding decodes padded URL-safe base64 and rejects non-zero
// trailing bits, so every byte string has exactly one accepted encoding.
var segmentEncoding = base64.URLEncoding.Strict()

// EncodeSegment encodes b as URL-safe base64 with padding stripped.
func EncodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeSegment reverses EncodeSegment.
//
// Padding is restored from the length: len%4 == 2 gets "==", len%4 == 3 gets
// "=", and len%4 == 1 has no valid restoration. Characters outside the
// URL-safe alphabet (including "=" and line breaks) are rejected.
func DecodeSegment(seg string) ([]byte, error) {
	if i := strings.IndexFunc(seg, isNotSegmentRune); i >= 0 {
		return nil, fmt.Errorf("%w: invalid character at offset %d", ErrMalformedEncoding, i)
	}

	switch len(seg) % 4 {
	case 1:
		return nil, fmt.Errorf("%w: invalid length %d", ErrMalformedEncoding, len(seg))
	case 2:
		seg += "=="
	case 3:
		seg += "="
	}

	b, err := segmentEncoding.DecodeString(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return b, nil
}

func isNotSegmentRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return false
	case r == '-' || r == '_':
		return false
	default:
		return true
	}
}

// encodeJSON renders v as compact JSON without HTML escaping, so scopes such
// as "fhir/*.*" and strings containing <, > or & appear literally.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return EncodeSegment(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// jsonLayout names the keys of a segment object. Keys are matched exactly;
// a case variant of a known key is an error rather than an alias.
type jsonLayout struct {
	required []string
	optional []string
}

var (
	headerLayout = jsonLayout{optional: []string{"alg", "typ"}}
	claimsLayout = jsonLayout{required: []string{"sub", "scope", "iat"}, optional: []string{"exp"}}
)

func (l jsonLayout) check(fields map[string]json.RawMessage) error {
	for key := range fields {
		if slices.Contains(l.required, key) || slices.Contains(l.optional, key) {
			continue
		}
		for _, known := range slices.Concat(l.required, l.optional) {
			if strings.EqualFold(key, known) {
				return fmt.Errorf("key %q must be spelled %q", key, known)
			}
		}
	}
	for _, key := range l.required {
		v, ok := fields[key]
		if !ok || bytes.Equal(v, []byte("null")) {
			return fmt.Errorf("missing %q", key)
		}
	}
	return nil
}

// decodeJSON decodes a segment holding a JSON object into v. Encoding
// failures wrap ErrMalformedEncoding. JSON syntax, field-type, null-object
// and key-layout failures wrap ErrMalformedClaims.
func decodeJSON(seg string, v any, layout jsonLayout) error {
	raw, err := DecodeSegment(seg)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedClaims, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: null object", ErrMalformedClaims)
	}
	if err := layout.check(fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedClaims, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedClaims, err)
	}
	return nil
}
