// Package token scans {{name}} placeholders and instance markers out of template text.
package token

import (
	"iter"
	"regexp"
)

// Pattern matches a placeholder: "{{", optional whitespace, a name without
// whitespace or braces, optional whitespace, "}}".
var Pattern = regexp.MustCompile(`\{\{\s*([^\s{}]+)\s*\}\}`)

// Match is one placeholder occurrence. Start and End are byte offsets of the
// whole token including braces.
type Match struct {
	Name  string
	Start int
	End   int
}

// Scan yields every placeholder in text, left to right.
// Each call starts a fresh scan; there is no shared cursor between calls.
func Scan(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, loc := range Pattern.FindAllStringSubmatchIndex(text, -1) {
			m := Match{
				Name:  text[loc[2]:loc[3]],
				Start: loc[0],
				End:   loc[1],
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Extract returns the distinct placeholder names in text in first-seen order.
func Extract(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for m := range Scan(text) {
		if seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		names = append(names, m.Name)
	}
	return names
}

// Contains reports whether text holds at least one {{name}} occurrence.
func Contains(text, name string) bool {
	return namePattern(name).MatchString(text)
}

// ReplaceAll rewrites every {{name}} occurrence (inner whitespace tolerated)
// to {{replacement}}.
func ReplaceAll(text, name, replacement string) string {
	return namePattern(name).ReplaceAllLiteralString(text, Placeholder(replacement))
}

// ReplaceFirst rewrites only the first {{name}} occurrence to {{replacement}}.
func ReplaceFirst(text, name, replacement string) string {
	loc := namePattern(name).FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + Placeholder(replacement) + text[loc[1]:]
}

// ReplaceAt rewrites the token occupying m to {{replacement}}.
func ReplaceAt(text string, m Match, replacement string) string {
	return text[:m.Start] + Placeholder(replacement) + text[m.End:]
}

// Placeholder formats name as a placeholder token.
func Placeholder(name string) string {
	return "{{" + name + "}}"
}

func namePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(name) + `\s*\}\}`)
}
