package sql

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/veloxext/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// IsValidIdentifier checks if the string is a valid SQL identifier.
func IsValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// EscapeString escapes a string value for use inside a single-quoted SQL literal.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func EscapeString(s string) string {
	// Fast path: if no escaping needed, return as-is
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	// Escape backslashes first, then single quotes
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// Quote quotes an identifier for the given dialect. Dotted names are
// quoted per segment.
func Quote(d, ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		switch d {
		case dialect.Postgres:
			parts[i] = pq.QuoteIdentifier(p)
		case dialect.MySQL:
			parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
		default:
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
		}
	}
	return strings.Join(parts, ".")
}

// Placeholder returns the n-th (1-based) bind parameter marker for the dialect.
func Placeholder(d string, n int) string {
	if d == dialect.Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// EscapeLike escapes the LIKE wildcards in s using '!' as the escape
// character. Callers must add ESCAPE '!' to the predicate.
func EscapeLike(s string) string {
	if !strings.ContainsAny(s, "!%_") {
		return s
	}
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
