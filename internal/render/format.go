package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// Formatter post-processes rendered HTML before display.
type Formatter interface {
	Format(htmlContent string) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(string) (string, error)

func (f FormatterFunc) Format(htmlContent string) (string, error) { return f(htmlContent) }

// None returns its input unchanged.
var None Formatter = FormatterFunc(func(s string) (string, error) { return s, nil })

// Minify collapses whitespace and drops optional markup.
var Minify Formatter = FormatterFunc(minifyHTML)

// FormatterByName maps the formatter config value to an implementation.
func FormatterByName(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return None, nil
	case "minify":
		return Minify, nil
	default:
		return nil, fmt.Errorf("unknown formatter %q (want none or minify)", name)
	}
}

// htmlMinifier is built on first use and shared by every Minify call.
var htmlMinifier = sync.OnceValue(func() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	return m
})

func minifyHTML(htmlContent string) (string, error) {
	out, err := htmlMinifier().String("text/html", htmlContent)
	if err != nil {
		return "", fmt.Errorf("failed to minify output: %w", err)
	}
	return out, nil
}
