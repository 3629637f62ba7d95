package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

// envVarPattern matches ${NAME}, optionally preceded by the $ escape.
var envVarPattern = regexp.MustCompile(`\$?\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict replaces every ${NAME} in s with the value of the
// environment variable NAME and fails with ErrMissingEnv listing each unset
// name. Nothing else is touched: a bare $ or $NAME is kept as written, and
// $${NAME} yields the literal ${NAME}.
func ExpandEnvStrict(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, "$$") {
			return m[1:]
		}
		name := m[2 : len(m)-1]
		v, ok := os.LookupEnv(name)
		if !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return out, nil
}
