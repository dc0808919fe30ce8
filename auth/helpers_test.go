package auth

import (
	"testing"
	"time"

	"github.com/jonwraymond/tokengate/token"
)

var (
	testSecret = token.NewSecret([]byte("test-signing-secret"))
	testNow    = time.Unix(1_700_000_000, 0)
)

func fixedNow() time.Time { return testNow }

func issue(t testing.TB, subject, scope string, ttl time.Duration) string {
	t.Helper()
	iss, err := token.NewIssuer(testSecret, token.WithClock(fixedNow))
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	var opts []token.ClaimOption
	if ttl > 0 {
		opts = append(opts, token.WithTTL(ttl))
	}
	tok, err := iss.Issue(subject, scope, opts...)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return tok.String()
}

func newBearer(t testing.TB, cfg BearerConfig) *BearerAuthenticator {
	t.Helper()
	if cfg.Now == nil {
		cfg.Now = fixedNow
	}
	a, err := NewBearerAuthenticator(cfg, token.NewVerifier(testSecret))
	if err != nil {
		t.Fatalf("NewBearerAuthenticator() error = %v", err)
	}
	return a
}
