// Package render turns a template and its variable defaults into final HTML.
package render

import "github.com/mark3labs/tplvars/internal/token"

// Substitute replaces every {{name}} in text with values[name], or with the
// empty string when name has no value. Replacement happens in one left to
// right pass, so substituted values are never scanned again.
func Substitute(text string, values map[string]string) string {
	return token.Pattern.ReplaceAllStringFunc(text, func(tok string) string {
		m := token.Pattern.FindStringSubmatch(tok)
		return values[m[1]]
	})
}
