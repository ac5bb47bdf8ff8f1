package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// getSourceLexer returns a C-family lexer with fallbacks
func getSourceLexer() chroma.Lexer {
	candidates := []string{"c++", "cpp", "c"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getTableStyle returns the table style with fallbacks
func getTableStyle() *chroma.Style {
	candidates := []string{"jitgen-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Disabled reports whether JITGEN_NO_COLOR is set.
func Disabled() bool {
	return os.Getenv("JITGEN_NO_COLOR") != ""
}

// ColorizeSource highlights generated C source. The input is returned
// unchanged when colors are disabled or no lexer is available.
func ColorizeSource(code string) (string, error) {
	if Disabled() {
		return code, nil
	}

	lexer := getSourceLexer()
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getTableStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}
