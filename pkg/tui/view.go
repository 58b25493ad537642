package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/accesstbilq/jovian/pkg/chat"
)

var (
	styleDefault = tcell.StyleDefault
	styleUser    = tcell.StyleDefault.Foreground(tcell.ColorSkyblue).Bold(true)
	styleAgent   = tcell.StyleDefault.Foreground(tcell.ColorPaleGreen)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorTomato)
	stylePrompt  = tcell.StyleDefault.Bold(true)
)

const (
	userLabel  = "you › "
	agentLabel = "agent › "
)

// renderedLine is one screen row of the transcript
type renderedLine struct {
	text  string
	style tcell.Style
}

// draw repaints the whole screen: transcript above, input line at the bottom
func (a *App) draw() {
	a.screen.Clear()
	width, height := a.screen.Size()
	if width == 0 || height == 0 {
		return
	}

	lines := a.transcriptLines(width)

	// Show the tail of the transcript above the input row.
	available := height - 1
	start := 0
	if len(lines) > available {
		start = len(lines) - available
	}
	for row, line := range lines[start:] {
		drawText(a.screen, 0, row, line.style, line.text)
	}

	prompt := "> " + string(a.input)
	drawText(a.screen, 0, height-1, stylePrompt, prompt)
	a.screen.ShowCursor(len([]rune(prompt)), height-1)

	a.screen.Show()
}

// transcriptLines flattens finalized messages plus any in-flight stream text
// into wrapped, styled screen rows.
func (a *App) transcriptLines(width int) []renderedLine {
	var lines []renderedLine

	appendEntry := func(label string, labelStyle tcell.Style, content string, contentStyle tcell.Style) {
		wrapped := wrapText(content, width-len(label))
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}
		lines = append(lines, renderedLine{text: label + wrapped[0], style: labelStyle})
		indent := strings.Repeat(" ", len(label))
		for _, cont := range wrapped[1:] {
			lines = append(lines, renderedLine{text: indent + cont, style: contentStyle})
		}
	}

	for _, e := range a.transcript {
		switch e.role {
		case chat.RoleUser:
			appendEntry(userLabel, styleUser, e.content, styleDefault)
		case chat.RoleError:
			appendEntry(agentLabel, styleError, e.content, styleError)
		default:
			appendEntry(agentLabel, styleAgent, e.content, styleDefault)
		}
		lines = append(lines, renderedLine{})
	}

	if a.typing {
		lines = append(lines, renderedLine{text: agentLabel + a.typingIndicator, style: styleAgent})
	} else if a.streamText != "" {
		appendEntry(agentLabel, styleAgent, a.streamText, styleDefault)
	}

	return lines
}

// wrapText wraps s to the given width, preserving explicit newlines. Words
// longer than the width are hard-split.
func wrapText(s string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		runes := []rune(paragraph)
		if len(runes) == 0 {
			lines = append(lines, "")
			continue
		}
		for len(runes) > 0 {
			if len(runes) <= width {
				lines = append(lines, string(runes))
				break
			}
			cut := width
			for i := width; i > 0; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
			lines = append(lines, strings.TrimRight(string(runes[:cut]), " "))
			runes = runes[cut:]
			for len(runes) > 0 && runes[0] == ' ' {
				runes = runes[1:]
			}
		}
	}
	return lines
}

// drawText writes a string at the given position, clipping at screen edge
func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	width, _ := screen.Size()
	col := x
	for _, r := range text {
		if col >= width {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}
