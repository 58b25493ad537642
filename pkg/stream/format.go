package stream

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Formatter renders completed agent replies for the terminal: fenced code
// blocks get chroma syntax highlighting inside a lipgloss box, everything
// else passes through untouched.
type Formatter struct {
	codeBlockStyle  lipgloss.Style
	chromaFormatter chroma.Formatter
	width           int
}

// NewFormatter creates a formatter targeting the given terminal width
func NewFormatter(width int) *Formatter {
	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	return &Formatter{
		codeBlockStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#555555")).
			Padding(0, 1),
		chromaFormatter: formatter,
		width:           width,
	}
}

// Format rewrites fenced code blocks in text with highlighted, boxed
// versions. Unterminated fences are left as-is.
func (f *Formatter) Format(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}

	var out strings.Builder
	remaining := text
	for {
		start := strings.Index(remaining, "```")
		if start < 0 {
			out.WriteString(remaining)
			break
		}

		rest := remaining[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			out.WriteString(remaining)
			break
		}

		out.WriteString(remaining[:start])

		fence := rest[:end]
		language := ""
		code := fence
		if nl := strings.Index(fence, "\n"); nl >= 0 {
			language = strings.TrimSpace(fence[:nl])
			code = fence[nl+1:]
		}
		out.WriteString("\n" + f.formatCode(strings.TrimRight(code, "\n"), language) + "\n")

		remaining = rest[end+3:]
	}

	return out.String()
}

// formatCode applies syntax highlighting and boxing to one code block
func (f *Formatter) formatCode(code, language string) string {
	if code == "" {
		return ""
	}

	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	highlighted := code
	if iterator, err := lexer.Tokenise(nil, code); err == nil {
		var buf strings.Builder
		if err := f.chromaFormatter.Format(&buf, styles.Get("monokai"), iterator); err == nil {
			highlighted = buf.String()
		}
	}

	boxWidth := f.width - 4
	if boxWidth < 30 {
		boxWidth = 30
	}
	return f.codeBlockStyle.Width(boxWidth).Render(highlighted)
}
