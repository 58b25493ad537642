package stream

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConsoleSink renders the chat to a write-only terminal. Replacement-style
// updates degrade to printing the unseen suffix of the agent text; when
// highlighting is enabled, streaming output is withheld and the finished
// reply is printed once, formatted.
type ConsoleSink struct {
	out       io.Writer
	formatter *Formatter
	highlight bool

	userStyle  lipgloss.Style
	agentStyle lipgloss.Style
	errorStyle lipgloss.Style

	printed int
}

// ConsoleOptions configures a ConsoleSink
type ConsoleOptions struct {
	Out       io.Writer
	Highlight bool
	Width     int
}

// NewConsoleSink creates a console sink. A nil Out defaults to stdout.
func NewConsoleSink(opts ConsoleOptions) *ConsoleSink {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	return &ConsoleSink{
		out:       out,
		formatter: NewFormatter(width),
		highlight: opts.Highlight,
		userStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB")),
		agentStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6347")),
	}
}

func (c *ConsoleSink) UserMessage(content string) {
	fmt.Fprintf(c.out, "%s %s\n", c.userStyle.Render("you ›"), content)
}

func (c *ConsoleSink) AgentTyping() {
	c.printed = 0
	fmt.Fprintf(c.out, "%s ", c.agentStyle.Render("agent ›"))
}

func (c *ConsoleSink) AgentUpdate(content string) {
	if c.highlight {
		// Withhold streaming output; the finished reply is printed once,
		// highlighted, in AgentDone.
		return
	}
	if len(content) < c.printed {
		// The accumulated text can only grow; a shorter text means a new
		// stream took over the slot.
		c.printed = 0
	}
	fmt.Fprint(c.out, content[c.printed:])
	c.printed = len(content)
}

func (c *ConsoleSink) AgentDone(content string) {
	if c.highlight {
		fmt.Fprint(c.out, c.formatter.Format(content))
	} else {
		c.AgentUpdate(content)
	}
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(c.out)
	}
	c.printed = 0
}

func (c *ConsoleSink) AgentError(content string) {
	fmt.Fprintf(c.out, "%s\n", c.errorStyle.Render(content))
	c.printed = 0
}

var _ Sink = (*ConsoleSink)(nil)
