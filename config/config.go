package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/tokengate/observe"
	"github.com/jonwraymond/tokengate/secret"
	"github.com/jonwraymond/tokengate/token"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "TOKENGATE_CONFIG"

// EnvSecret is the default environment variable for the signing secret.
const EnvSecret = "TOKENGATE_SECRET"

// Config is the configuration shared by the gateway and the issuing CLI.
type Config struct {
	// Listen is the gateway's listen address.
	// Default: ":8080"
	Listen string `yaml:"listen"`

	// AdminListen, when set, serves the health and metrics endpoints on a
	// separate address. Empty serves them on Listen, which then exposes
	// secret status (/health/secret) to anyone who can reach it.
	AdminListen string `yaml:"admin_listen"`

	// CheckPath is the authorization-subrequest endpoint.
	// Default: "/auth"
	CheckPath string `yaml:"check_path"`

	// Realm is advertised in WWW-Authenticate on denial.
	// Default: "tokengate"
	Realm string `yaml:"realm"`

	// Header carries the credential.
	// Default: "Authorization"
	Header string `yaml:"header"`

	// PassthroughHeader is consulted when Header is absent. Empty disables it.
	PassthroughHeader string `yaml:"passthrough_header"`

	// PassthroughBare reads PassthroughHeader as a bare token without the
	// "Bearer " scheme.
	PassthroughBare bool `yaml:"passthrough_bare"`

	// SubjectHeader is set to the verified subject on allow. Empty disables it.
	// Default: "X-Auth-Subject"
	SubjectHeader string `yaml:"subject_header"`

	// EnforceScope enables SMART scope checks against the original request
	// (X-Original-URI and X-Original-Method). Off by default.
	EnforceScope bool `yaml:"enforce_scope"`

	// ScopeCompartment is the scope prefix matched when EnforceScope is on.
	// Default: "fhir"
	ScopeCompartment string `yaml:"scope_compartment"`

	// Secret is a reference to the signing secret, resolved through the
	// secret package. Inline values expand $VAR and ${VAR}; write $$ for a
	// literal $. Default: "secretref:env:TOKENGATE_SECRET"
	Secret string `yaml:"secret"`

	// SecretProviders holds per-provider settings, e.g. {"file": {"dir": "/run/secrets"}}.
	SecretProviders map[string]map[string]any `yaml:"secret_providers"`

	// MaxInFlight caps concurrent checks. Zero leaves checks unbounded.
	MaxInFlight int `yaml:"max_inflight"`

	// AdmissionWait is how long a check waits for a slot once MaxInFlight
	// is reached before it is denied.
	AdmissionWait Duration `yaml:"admission_wait"`

	// Issue holds defaults for tokengate-issue.
	Issue IssueConfig `yaml:"issue"`

	// Observe configures telemetry.
	Observe observe.Config `yaml:"observe"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// IssueConfig holds defaults for issued tokens.
type IssueConfig struct {
	Subject string `yaml:"subject"`
	Scope   string `yaml:"scope"`
	Hours   int    `yaml:"hours"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:           ":8080",
		CheckPath:        "/auth",
		Realm:            "tokengate",
		Header:           "Authorization",
		SubjectHeader:    "X-Auth-Subject",
		ScopeCompartment: "fhir",
		Secret:           "secretref:env:" + EnvSecret,
		Issue: IssueConfig{
			Subject: "medschool-cli",
			Scope:   "fhir/*.*",
			Hours:   24,
		},
		Observe: observe.Config{
			ServiceName: "tokengate",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1.0},
			Metrics:     observe.MetricsConfig{Exporter: "none"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
		ShutdownTimeout: Duration(10 * time.Second),
	}
}

// Load loads the file at path, falling back to $TOKENGATE_CONFIG. With
// neither set it returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file over Default().
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default() and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var reservedPaths = []string{"/healthz", "/readyz", "/health", "/metrics"}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Listen == "" {
		invalid("listen is required")
	}
	if c.AdminListen != "" && c.AdminListen == c.Listen {
		invalid("admin_listen must differ from listen")
	}
	if c.PassthroughBare && c.PassthroughHeader == "" {
		invalid("passthrough_bare requires passthrough_header")
	}
	if !strings.HasPrefix(c.CheckPath, "/") {
		invalid("check_path %q must start with /", c.CheckPath)
	}
	if slices.Contains(reservedPaths, c.CheckPath) || strings.HasPrefix(c.CheckPath, "/health/") {
		invalid("check_path %q collides with a built-in endpoint", c.CheckPath)
	}
	if c.Header == "" {
		invalid("header is required")
	}
	for name, h := range map[string]string{"header": c.Header, "passthrough_header": c.PassthroughHeader, "subject_header": c.SubjectHeader} {
		if h != "" && !validHeaderName(h) {
			invalid("%s %q is not a valid header name", name, h)
		}
	}
	if strings.ContainsAny(c.Realm, "\r\n") {
		invalid("realm must be a single line")
	}
	if c.ShutdownTimeout.Std() <= 0 {
		invalid("shutdown_timeout must be positive")
	}
	if c.MaxInFlight < 0 {
		invalid("max_inflight must not be negative")
	}
	if c.AdmissionWait.Std() < 0 {
		invalid("admission_wait must not be negative")
	}
	if c.Issue.Hours <= 0 {
		invalid("issue.hours must be positive")
	}
	if c.Observe.Tracing.Enabled || c.Observe.Metrics.Enabled || c.Observe.Logging.Enabled {
		if err := c.Observe.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: observe: %w", ErrInvalid, err))
		}
	}

	return errors.Join(errs...)
}

func validHeaderName(h string) bool {
	for _, r := range h {
		if r > 0x7e || r <= ' ' || strings.ContainsRune(`"(),/:;<=>?@[\]{}`, r) {
			return false
		}
	}
	return h != ""
}

// ResolveSecret resolves the Secret reference. A reference to an unset or
// empty variable or a missing file yields a zero Secret and no error; any other
// failure (unknown provider, unreadable file) is returned. An inline value
// naming an unset variable is an error: a literal `$` is written `$$`.
func (c *Config) ResolveSecret(ctx context.Context) (token.Secret, error) {
	r, err := secret.DefaultRegistry.Resolver(false, c.SecretProviders)
	if err != nil {
		return token.Secret{}, fmt.Errorf("config: %w", err)
	}
	defer func() { _ = r.Close() }()

	value, err := r.ResolveValue(ctx, c.Secret)
	switch {
	case errors.Is(err, secret.ErrMissingEnv) && c.SecretSource() == "inline":
		return token.Secret{}, fmt.Errorf("config: resolve secret: %w (write $$ for a literal $)", err)
	case errors.Is(err, secret.ErrMissingEnv), errors.Is(err, secret.ErrNotFound), errors.Is(err, secret.ErrEmptySecret):
		return token.Secret{}, nil
	case err != nil:
		return token.Secret{}, fmt.Errorf("config: resolve secret: %w", err)
	}
	return token.NewSecret([]byte(value)), nil
}

var envRefPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// SecretSource describes where the secret is read from without revealing
// it: "env:NAME", "file:/path", "none", or "inline" for a literal value.
func (c *Config) SecretSource() string {
	ref := strings.TrimSpace(c.Secret)
	if provider, name, ok := secret.ParseSecretRef(ref); ok {
		return provider + ":" + name
	}
	if m := envRefPattern.FindStringSubmatch(ref); m != nil {
		return "env:" + m[1]
	}
	if ref == "" {
		return "none"
	}
	return "inline"
}

// LoadIssuer loads configuration for issuing. A missing or empty secret is
// ErrSecretRequired.
func LoadIssuer(ctx context.Context, path string) (*Config, token.Secret, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, token.Secret{}, err
	}
	s, err := cfg.ResolveSecret(ctx)
	if err != nil {
		return nil, token.Secret{}, err
	}
	if s.IsZero() {
		return nil, token.Secret{}, fmt.Errorf("%w: nothing found at %s", ErrSecretRequired, cfg.SecretSource())
	}
	return cfg, s, nil
}

// LoadGateway loads configuration for verification. A missing secret is not
// an error: the returned zero Secret makes the verifier deny every request.
func LoadGateway(ctx context.Context, path string) (*Config, token.Secret, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, token.Secret{}, err
	}
	s, err := cfg.ResolveSecret(ctx)
	if err != nil {
		return nil, token.Secret{}, err
	}
	return cfg, s, nil
}
