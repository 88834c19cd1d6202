package secret

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ExpandEnvStrict expands environment variables in s.
//
// Semantics:
//   - `$VAR` and `${VAR}` expand to the variable's value; unset is an error.
//   - `${VAR:-default}` expands to default when VAR is unset or empty.
//   - `$$` emits a literal `$`.
//
// All missing variables are reported together, sorted.
func ExpandEnvStrict(s string) (string, error) {
	missing := make(map[string]struct{})

	out := os.Expand(s, func(name string) string {
		if name == "$" {
			return "$"
		}
		key, def, hasDefault := strings.Cut(name, ":-")
		if v, ok := os.LookupEnv(key); ok && (v != "" || !hasDefault) {
			return v
		}
		if hasDefault {
			return def
		}
		missing[key] = struct{}{}
		return ""
	})

	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(keys, ", "))
	}
	return out, nil
}
