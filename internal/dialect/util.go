package dialect

import (
	"strings"
)

// QuoteIdentifier wraps name in double quotes, doubling any embedded double quote.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteAll applies quote to every name, returning a new slice.
func QuoteAll(names []string, quote func(string) string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return quoted
}
