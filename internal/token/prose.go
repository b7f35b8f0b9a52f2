package token

import "strings"

// MapProse applies fn to the prose parts of an inline markdown fragment.
//
// The fragment is split on literal backticks: even-indexed parts are prose,
// odd-indexed parts are inline code and are passed through untouched. The
// split is purely lexical; a stray backtick flips every later part.
func MapProse(text string, fn func(string) string) string {
	if !strings.Contains(text, "`") {
		return fn(text)
	}
	parts := strings.Split(text, "`")
	for i := 0; i < len(parts); i += 2 {
		parts[i] = fn(parts[i])
	}
	return strings.Join(parts, "`")
}
