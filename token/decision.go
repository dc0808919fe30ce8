package token

import "fmt"

// Reason classifies a verification outcome.
type Reason int

const (
	// ReasonNone accompanies an allowed request.
	ReasonNone Reason = iota
	ReasonNoCredential
	ReasonMalformedToken
	ReasonMalformedClaims
	ReasonUnsupportedAlgorithm
	ReasonBadSignature
	ReasonExpired
	ReasonSecretUnavailable
)

// String returns the snake_case name used in logs and metric attributes.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoCredential:
		return "no_credential"
	case ReasonMalformedToken:
		return "malformed_token"
	case ReasonMalformedClaims:
		return "malformed_claims"
	case ReasonUnsupportedAlgorithm:
		return "unsupported_algorithm"
	case ReasonBadSignature:
		return "bad_signature"
	case ReasonExpired:
		return "expired"
	case ReasonSecretUnavailable:
		return "secret_unavailable"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error for r, or nil for ReasonNone.
func (r Reason) Err() error {
	switch r {
	case ReasonNone:
		return nil
	case ReasonNoCredential:
		return ErrNoCredential
	case ReasonMalformedToken:
		return ErrMalformedToken
	case ReasonMalformedClaims:
		return ErrMalformedClaims
	case ReasonUnsupportedAlgorithm:
		return ErrUnsupportedAlgorithm
	case ReasonBadSignature:
		return ErrBadSignature
	case ReasonExpired:
		return ErrExpired
	default:
		return ErrSecretUnavailable
	}
}

// Decision is the outcome of one verification.
type Decision struct {
	// Allow is true only when every check passed.
	Allow bool

	// Reason is ReasonNone when allowed, otherwise the first failed check.
	Reason Reason

	// Claims holds the verified claims. Nil on denial.
	Claims *Claims

	// Cause carries the codec error behind ReasonMalformedClaims.
	Cause error
}

// Err returns nil for an allowed decision. Otherwise it returns the reason's
// sentinel, joined with Cause when one is recorded.
func (d Decision) Err() error {
	if d.Allow {
		return nil
	}
	sentinel := d.Reason.Err()
	if d.Cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, d.Cause)
}

func allow(claims *Claims) Decision {
	return Decision{Allow: true, Reason: ReasonNone, Claims: claims}
}

func deny(reason Reason, cause error) Decision {
	return Decision{Reason: reason, Cause: cause}
}
