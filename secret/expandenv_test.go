package secret

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${TOKENGATE_TEST_MISSING}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("ExpandEnvStrict() error = %v, want ErrMissingEnv", err)
	}
	if !strings.Contains(err.Error(), "TOKENGATE_TEST_MISSING") {
		t.Fatalf("expected missing var name in error, got: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}

func TestExpandEnvStrict_EmptyIsAllowed(t *testing.T) {
	t.Setenv("TOKENGATE_TEST_EMPTY", "")

	out, err := ExpandEnvStrict("${TOKENGATE_TEST_EMPTY}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "" {
		t.Fatalf("ExpandEnvStrict() = %q, want empty", out)
	}
}

func TestExpandEnvStrict_Forms(t *testing.T) {
	t.Setenv("TOKENGATE_TEST_SET", "v")
	os.Unsetenv("TOKENGATE_TEST_UNSET")

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "plain", want: "plain"},
		{in: "$TOKENGATE_TEST_SET", want: "v"},
		{in: "${TOKENGATE_TEST_SET}", want: "v"},
		{in: "pa$$word", want: "pa$word"},
		{in: "trailing$", want: "trailing$"},
		{in: "$%", want: "$%"},
		{in: "pa$TOKENGATE_TEST_UNSET", wantErr: true},
		{in: "pa${TOKENGATE_TEST_UNSET}", wantErr: true},
		{in: "abc$1def", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingEnv) {
					t.Errorf("ExpandEnvStrict(%q) error = %v, want ErrMissingEnv", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandEnvStrict(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ExpandEnvStrict(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
