package token

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

const testKey = "test-secret-key-at-least-32-bytes"

func issueAt(t *testing.T, key string, iat time.Time, opts ...ClaimOption) string {
	t.Helper()
	issuer, err := NewIssuer(NewSecret([]byte(key)), WithClock(func() time.Time { return iat }))
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	tok, err := issuer.Issue("medschool-cli", "fhir/*.*", opts...)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return tok.String()
}

func TestVerifier_RoundTrip(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))

	cases := []struct {
		subject string
		scope   string
		opts    []ClaimOption
	}{
		{"medschool-cli", "fhir/*.*", []ClaimOption{WithTTL(time.Hour)}},
		{"", "", nil},
		{"agent \"quoted\" <x>", "fhir/Patient.read fhir/Observation.read", []ClaimOption{WithTTL(time.Second)}},
		{"ünïcødé", "fhir/*.*", []ClaimOption{WithTTL(365 * 24 * time.Hour)}},
	}

	for _, c := range cases {
		issuer, _ := NewIssuer(NewSecret([]byte(testKey)), WithClock(func() time.Time { return scenarioIAT }))
		tok, err := issuer.Issue(c.subject, c.scope, c.opts...)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		d := verifier.Verify("Bearer "+tok.String(), scenarioIAT)
		if !d.Allow {
			t.Fatalf("Verify(%q) reason = %v, want allow", c.subject, d.Reason)
		}
		if d.Reason != ReasonNone || d.Err() != nil {
			t.Errorf("allowed decision has reason %v err %v", d.Reason, d.Err())
		}
		if d.Claims.Subject != c.subject || d.Claims.Scope != c.scope {
			t.Errorf("claims = %+v, want subject %q scope %q", d.Claims, c.subject, c.scope)
		}
		if d.Claims.IssuedAt != scenarioIAT.Unix() {
			t.Errorf("IssuedAt = %d", d.Claims.IssuedAt)
		}
	}
}

func TestVerifier_ExpiryBoundary(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	tok := "Bearer " + issueAt(t, testKey, scenarioIAT, WithTTL(time.Hour))
	iat := scenarioIAT.Unix()

	tests := []struct {
		name       string
		now        int64
		wantAllow  bool
		wantReason Reason
	}{
		{"at iat", iat, true, ReasonNone},
		{"one second before exp", iat + 3599, true, ReasonNone},
		{"exactly exp", iat + 3600, false, ReasonExpired},
		{"one second after exp", iat + 3601, false, ReasonExpired},
		{"long after", iat + 86400*30, false, ReasonExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := verifier.Verify(tok, time.Unix(tt.now, 0))
			if d.Allow != tt.wantAllow || d.Reason != tt.wantReason {
				t.Errorf("Verify() = allow %v reason %v, want allow %v reason %v",
					d.Allow, d.Reason, tt.wantAllow, tt.wantReason)
			}
		})
	}

	d := verifier.Verify(tok, time.Unix(iat+3599, 999_999_999))
	if !d.Allow {
		t.Errorf("sub-second before exp denied with %v", d.Reason)
	}
	if !errors.Is(verifier.Verify(tok, time.Unix(iat+3600, 0)).Err(), ErrExpired) {
		t.Error("expired decision does not wrap ErrExpired")
	}
}

func TestVerifier_NoExpiry(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	tok := "Bearer " + issueAt(t, testKey, scenarioIAT)

	tenYears := scenarioIAT.AddDate(10, 0, 0)
	if d := verifier.Verify(tok, tenYears); !d.Allow {
		t.Errorf("Verify() at iat+10y reason = %v, want allow", d.Reason)
	}
}

func TestVerifier_WrongSecret(t *testing.T) {
	tok := "Bearer " + issueAt(t, testKey, scenarioIAT, WithTTL(time.Hour))

	for _, key := range []string{"other-secret", testKey + "x", strings.ToUpper(testKey), testKey[:len(testKey)-1]} {
		d := NewVerifier(NewSecret([]byte(key))).Verify(tok, scenarioIAT)
		if d.Allow || d.Reason != ReasonBadSignature {
			t.Errorf("key %q: allow %v reason %v, want bad_signature", key, d.Allow, d.Reason)
		}
		if !errors.Is(d.Err(), ErrBadSignature) {
			t.Errorf("key %q: Err() = %v", key, d.Err())
		}
	}
}

func TestVerifier_TamperSensitivity(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	tok := issueAt(t, testKey, scenarioIAT, WithTTL(time.Hour))
	segments := strings.Split(tok, ".")

	for idx, allowed := range map[int][]Reason{
		0: {ReasonBadSignature, ReasonMalformedClaims, ReasonUnsupportedAlgorithm},
		1: {ReasonBadSignature, ReasonMalformedClaims},
	} {
		raw, err := DecodeSegment(segments[idx])
		if err != nil {
			t.Fatalf("DecodeSegment() error = %v", err)
		}

		for i := range raw {
			for bit := 0; bit < 8; bit++ {
				flipped := append([]byte(nil), raw...)
				flipped[i] ^= 1 << bit

				parts := append([]string(nil), segments...)
				parts[idx] = EncodeSegment(flipped)

				d := verifier.VerifyToken(strings.Join(parts, "."), scenarioIAT)
				if d.Allow {
					t.Fatalf("segment %d byte %d bit %d: tampered token allowed", idx, i, bit)
				}
				if !containsReason(allowed, d.Reason) {
					t.Fatalf("segment %d byte %d bit %d: reason %v not in %v", idx, i, bit, d.Reason, allowed)
				}
			}
		}
	}
}

func TestVerifier_TamperedSignature(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	tok := issueAt(t, testKey, scenarioIAT)
	segments := strings.Split(tok, ".")

	for _, sig := range []string{"", "AAAA", segments[2][1:], segments[2] + "A", "!!!", strings.ToUpper(segments[2])} {
		d := verifier.VerifyToken(segments[0]+"."+segments[1]+"."+sig, scenarioIAT)
		if d.Allow || d.Reason != ReasonBadSignature {
			t.Errorf("sig %q: allow %v reason %v, want bad_signature", sig, d.Allow, d.Reason)
		}
	}
}

func TestVerifier_AlgorithmConfusion(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	claimsSeg := strings.Split(issueAt(t, testKey, scenarioIAT, WithTTL(time.Hour)), ".")[1]

	headers := []string{
		`{"alg":"none","typ":"JWT"}`,
		`{"alg":"None","typ":"JWT"}`,
		`{"alg":"HS384","typ":"JWT"}`,
		`{"alg":"HS512","typ":"JWT"}`,
		`{"alg":"RS256","typ":"JWT"}`,
		`{"alg":"ES256","typ":"JWT"}`,
		`{"alg":"hs256","typ":"JWT"}`,
		`{"alg":"HS256 ","typ":"JWT"}`,
		`{"alg":"","typ":"JWT"}`,
		`{"typ":"JWT"}`,
		`{}`,
	}

	for _, h := range headers {
		for _, sig := range []string{"", "garbage", "AAAA"} {
			tok := EncodeSegment([]byte(h)) + "." + claimsSeg + "." + sig
			d := verifier.VerifyToken(tok, scenarioIAT)
			if d.Allow || d.Reason != ReasonUnsupportedAlgorithm {
				t.Errorf("header %s sig %q: allow %v reason %v, want unsupported_algorithm", h, sig, d.Allow, d.Reason)
			}
		}
	}
}

// signSegments signs arbitrary header and claims JSON with key.
func signSegments(t *testing.T, key, headerJSON, claimsJSON string) string {
	t.Helper()
	input := EncodeSegment([]byte(headerJSON)) + "." + EncodeSegment([]byte(claimsJSON))
	method, _ := HS256.signingMethod()
	sig, err := signature(method, NewSecret([]byte(key)), input)
	if err != nil {
		t.Fatalf("signature() error = %v", err)
	}
	return input + "." + sig
}

func TestVerifier_SignedButMalformedObjects(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	const header = `{"alg":"HS256","typ":"JWT"}`

	tests := []struct {
		name   string
		header string
		claims string
	}{
		{"null claims", header, `null`},
		{"empty claims", header, `{}`},
		{"upper-case claim keys", header, `{"SUB":"x","Scope":"y","IAT":5}`},
		{"missing scope", header, `{"sub":"x","iat":5}`},
		{"null header", `null`, `{"sub":"x","scope":"y","iat":5}`},
		{"upper-case alg key", `{"ALG":"HS256","typ":"JWT"}`, `{"sub":"x","scope":"y","iat":5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := signSegments(t, testKey, tt.header, tt.claims)
			d := verifier.VerifyToken(tok, scenarioIAT)
			if d.Allow || d.Reason != ReasonMalformedClaims {
				t.Errorf("allow %v reason %v, want malformed_claims", d.Allow, d.Reason)
			}
			if !errors.Is(d.Cause, ErrMalformedClaims) {
				t.Errorf("cause = %v, want ErrMalformedClaims", d.Cause)
			}
		})
	}

	ok := signSegments(t, testKey, header, `{"sub":"x","scope":"y","iat":5}`)
	if d := verifier.VerifyToken(ok, scenarioIAT); !d.Allow {
		t.Errorf("well-formed hand-signed token denied: %v (%v)", d.Reason, d.Cause)
	}
}

func TestVerifier_MalformedInput(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	valid := issueAt(t, testKey, scenarioIAT)
	segments := strings.Split(valid, ".")

	tests := []struct {
		name       string
		header     string
		wantReason Reason
	}{
		{"empty header", "", ReasonNoCredential},
		{"prefix only", "Bearer ", ReasonNoCredential},
		{"no space", "Bearer" + valid, ReasonNoCredential},
		{"lowercase scheme", "bearer " + valid, ReasonNoCredential},
		{"basic scheme", "Basic dXNlcjpwYXNz", ReasonNoCredential},
		{"bare token", valid, ReasonNoCredential},
		{"one segment", "Bearer abc", ReasonMalformedToken},
		{"two segments", "Bearer " + segments[0] + "." + segments[1], ReasonMalformedToken},
		{"four segments", "Bearer " + valid + ".extra", ReasonMalformedToken},
		{"only dots", "Bearer ....", ReasonMalformedToken},
		{"two dots", "Bearer ..", ReasonMalformedClaims},
		{"invalid base64 header", "Bearer !!!." + segments[1] + "." + segments[2], ReasonMalformedClaims},
		{"invalid base64 claims", "Bearer " + segments[0] + ".a*b." + segments[2], ReasonMalformedClaims},
		{"len%4==1 claims", "Bearer " + segments[0] + ".abcde." + segments[2], ReasonMalformedClaims},
		{"padded header", "Bearer " + segments[0] + "=." + segments[1] + "." + segments[2], ReasonMalformedClaims},
		{"double space", "Bearer  " + valid, ReasonMalformedClaims},
		{"trailing newline", "Bearer " + valid + "\n", ReasonBadSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := verifier.Verify(tt.header, scenarioIAT)
			if d.Allow {
				t.Fatal("malformed credential allowed")
			}
			if d.Reason != tt.wantReason {
				t.Errorf("reason = %v, want %v (cause %v)", d.Reason, tt.wantReason, d.Cause)
			}
			if d.Claims != nil {
				t.Error("denied decision carries claims")
			}
		})
	}
}

func TestVerifier_MalformedEncodingCause(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))

	d := verifier.VerifyToken("!!!.e30.sig", scenarioIAT)
	if d.Reason != ReasonMalformedClaims {
		t.Fatalf("reason = %v, want malformed_claims", d.Reason)
	}
	if !errors.Is(d.Err(), ErrMalformedClaims) || !errors.Is(d.Err(), ErrMalformedEncoding) {
		t.Errorf("Err() = %v, want both ErrMalformedClaims and ErrMalformedEncoding", d.Err())
	}
}

func TestVerifier_SecretUnavailable(t *testing.T) {
	tok := "Bearer " + issueAt(t, testKey, scenarioIAT)

	for _, verifier := range []*Verifier{NewVerifier(Secret{}), NewVerifier(NewSecret(nil)), nil} {
		if verifier.Available() {
			t.Error("Available() = true for zero secret")
		}
		for _, cred := range []string{tok, "", "Bearer x.y.z", "garbage"} {
			d := verifier.Verify(cred, scenarioIAT)
			if d.Allow || d.Reason != ReasonSecretUnavailable {
				t.Errorf("Verify(%q) = allow %v reason %v, want secret_unavailable", cred, d.Allow, d.Reason)
			}
			d = verifier.VerifyToken(strings.TrimPrefix(cred, "Bearer "), scenarioIAT)
			if d.Reason != ReasonSecretUnavailable {
				t.Errorf("VerifyToken(%q) reason %v, want secret_unavailable", cred, d.Reason)
			}
		}
	}
}

func TestVerifier_Concurrent(t *testing.T) {
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	good := "Bearer " + issueAt(t, testKey, scenarioIAT, WithTTL(time.Hour))
	bad := "Bearer " + issueAt(t, "other", scenarioIAT, WithTTL(time.Hour))

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if d := verifier.Verify(good, scenarioIAT); !d.Allow {
					errs <- "good token denied: " + d.Reason.String()
					return
				}
				if d := verifier.Verify(bad, scenarioIAT); d.Reason != ReasonBadSignature {
					errs <- "bad token reason: " + d.Reason.String()
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestReason_StringAndErr(t *testing.T) {
	tests := []struct {
		reason Reason
		name   string
		err    error
	}{
		{ReasonNone, "none", nil},
		{ReasonNoCredential, "no_credential", ErrNoCredential},
		{ReasonMalformedToken, "malformed_token", ErrMalformedToken},
		{ReasonMalformedClaims, "malformed_claims", ErrMalformedClaims},
		{ReasonUnsupportedAlgorithm, "unsupported_algorithm", ErrUnsupportedAlgorithm},
		{ReasonBadSignature, "bad_signature", ErrBadSignature},
		{ReasonExpired, "expired", ErrExpired},
		{ReasonSecretUnavailable, "secret_unavailable", ErrSecretUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reason.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.reason.Err(); got != tt.err {
				t.Errorf("Err() = %v, want %v", got, tt.err)
			}
		})
	}

	if Reason(99).String() != "unknown" {
		t.Errorf("unknown reason String() = %q", Reason(99).String())
	}
}

func TestAlgorithm_Supported(t *testing.T) {
	if !HS256.Supported() {
		t.Error("HS256 not supported")
	}
	for _, alg := range []Algorithm{"none", "HS384", "RS256", ""} {
		if alg.Supported() {
			t.Errorf("%q reported supported", alg)
		}
	}
}

func containsReason(reasons []Reason, r Reason) bool {
	for _, want := range reasons {
		if want == r {
			return true
		}
	}
	return false
}
