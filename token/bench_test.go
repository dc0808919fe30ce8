package token

import (
	"testing"
	"time"
)

func benchIssuer(b *testing.B) *Issuer {
	b.Helper()
	issuer, err := NewIssuer(NewSecret([]byte(testKey)), WithClock(func() time.Time { return scenarioIAT }))
	if err != nil {
		b.Fatalf("NewIssuer() error = %v", err)
	}
	return issuer
}

// BenchmarkIssuer_Issue measures claim encoding and signing.
func BenchmarkIssuer_Issue(b *testing.B) {
	issuer := benchIssuer(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = issuer.Issue("medschool-cli", "fhir/*.*", WithTTL(24*time.Hour))
	}
}

// BenchmarkVerifier_Verify measures the allow path.
func BenchmarkVerifier_Verify(b *testing.B) {
	tok, err := benchIssuer(b).Issue("medschool-cli", "fhir/*.*", WithTTL(24*time.Hour))
	if err != nil {
		b.Fatalf("Issue() error = %v", err)
	}
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	header := BearerPrefix + tok.String()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if d := verifier.Verify(header, scenarioIAT); !d.Allow {
			b.Fatalf("Verify() denied: %v", d.Reason)
		}
	}
}

// BenchmarkVerifier_Verify_BadSignature measures the deny path after a full
// decode and HMAC comparison.
func BenchmarkVerifier_Verify_BadSignature(b *testing.B) {
	tok, err := benchIssuer(b).Issue("medschool-cli", "fhir/*.*")
	if err != nil {
		b.Fatalf("Issue() error = %v", err)
	}
	verifier := NewVerifier(NewSecret([]byte("some-other-secret")))
	header := BearerPrefix + tok.String()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = verifier.Verify(header, scenarioIAT)
	}
}

// BenchmarkVerifier_Verify_Parallel measures concurrent verification.
func BenchmarkVerifier_Verify_Parallel(b *testing.B) {
	tok, err := benchIssuer(b).Issue("medschool-cli", "fhir/*.*")
	if err != nil {
		b.Fatalf("Issue() error = %v", err)
	}
	verifier := NewVerifier(NewSecret([]byte(testKey)))
	header := BearerPrefix + tok.String()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = verifier.Verify(header, scenarioIAT)
		}
	})
}
