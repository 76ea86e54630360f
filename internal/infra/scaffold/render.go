package scaffold

import (
	"fmt"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
)

// renderString replaces {{name}} placeholders with values from vars.
// Unknown names and malformed placeholders are errors.
func renderString(input string, vars map[string]string) (string, error) {
	if input == "" {
		return "", nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", renderErr(domain.KindInvalidConfig, fmt.Errorf("unclosed template expression"))
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", renderErr(domain.KindInvalidConfig, fmt.Errorf("empty template expression"))
		}

		value, ok := vars[key]
		if !ok {
			return "", renderErr(domain.KindNotFound, fmt.Errorf("missing variable %q", key))
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}

func renderErr(kind domain.ErrorKind, err error) error {
	return &domain.OpError{Op: "scaffold.render", Kind: kind, Err: err}
}
