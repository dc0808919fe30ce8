package secret

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// RefPrefix marks a value that names a secret instead of containing it.
const RefPrefix = "secretref:"

// Resolver turns a configured value into the secret it stands for.
//
// A value of the form secretref:<provider>:<ref> is looked up through the
// named provider. Any other value is the secret itself after ${VAR}
// expansion.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a Resolver over providers. A strict Resolver treats a
// provider returning "" as ErrEmptySecret.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers)), strict: strict}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds provider under its Name, replacing a previous one.
func (r *Resolver) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue resolves value. A nil Resolver only expands ${VAR}.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(expanded, RefPrefix) || r == nil {
		return expanded, nil
	}

	name, ref, ok := ParseSecretRef(expanded)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMalformedRef, expanded)
	}
	provider := r.providers[name]
	if provider == nil {
		return "", fmt.Errorf("%w: %q (have %s)", ErrUnknownProvider, name, strings.Join(r.names(), ", "))
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptySecret, name, ref)
	}
	return resolved, nil
}

func (r *Resolver) names() []string {
	return slices.Sorted(maps.Keys(r.providers))
}

// Close closes every provider.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, name := range r.names() {
		if err := r.providers[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("secret: close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ParseSecretRef splits secretref:<provider>:<ref>. The ref may itself
// contain colons.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, RefPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}
