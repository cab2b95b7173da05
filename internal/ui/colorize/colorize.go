// Package colorize highlights decoded instructions for the terminal.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Disabled reports whether ASMEXPLORER_NO_COLOR turns highlighting off.
func Disabled() bool {
	return os.Getenv("ASMEXPLORER_NO_COLOR") != ""
}

// assemblyLexer returns the first available assembly lexer. objdump prints
// GNU as syntax, so gas is preferred.
func assemblyLexer() chroma.Lexer {
	for _, name := range []string{"gas", "GAS", "nasm", "armasm"} {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func disasmStyle() *chroma.Style {
	for _, name := range []string{StyleName, "dracula", "monokai"} {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func terminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Highlighter colors instruction text. The zero value highlights unless
// ASMEXPLORER_NO_COLOR is set.
type Highlighter struct {
	Off bool
}

// Instruction highlights one decoded instruction, e.g. "mov %rsp,%rbp".
// On any lexer or formatter failure the text is returned unchanged.
func (h Highlighter) Instruction(text string) string {
	if h.Off || Disabled() || strings.TrimSpace(text) == "" || strings.Contains(text, "\n") {
		return text
	}
	lexer := assemblyLexer()
	if lexer == nil {
		return text
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := terminalFormatter().Format(&buf, disasmStyle(), iterator); err != nil {
		return text
	}
	// Lexers append a newline; the caller's line has none.
	return strings.ReplaceAll(buf.String(), "\n", "")
}
