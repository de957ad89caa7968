package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight colours HTML for a true colour terminal using the named chroma
// style. Unknown styles fall back to chroma's default.
func Highlight(source, style string) (string, error) {
	lexer := lexers.Get("html")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	// Use terminal16m formatter for true color output
	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise output: %w", err)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, s, iterator); err != nil {
		return "", fmt.Errorf("failed to highlight output: %w", err)
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}
