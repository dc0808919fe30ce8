package secret

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ExpandEnvStrict expands environment variables in s.
//
// `$VAR` and `${VAR}` expand as in os.ExpandEnv, except that naming an unset
// variable in either form is an error rather than an empty string. This
// includes shell specials such as `$1` or `$@`. `$$` emits a literal `$`, so
// a literal secret containing `$` must double it.
func ExpandEnvStrict(s string) (string, error) {
	const dollarSentinel = "\x00TOKENGATE_SECRET_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	var missing []string
	seen := make(map[string]bool)
	s = os.Expand(s, func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok && !seen[key] {
			seen[key] = true
			missing = append(missing, key)
		}
		return v
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}
