package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/accesstbilq/jovian/pkg/chat"
	"github.com/accesstbilq/jovian/pkg/config"
	"github.com/accesstbilq/jovian/pkg/controllers"
	"github.com/accesstbilq/jovian/pkg/logger"
	"github.com/accesstbilq/jovian/pkg/stream"
)

// entry is one finalized transcript line group
type entry struct {
	role    string
	content string
}

// App is the interactive chat screen. All state mutation happens on the
// event loop goroutine; the render sink posts closures into the loop, so the
// streaming goroutines never touch UI state directly.
type App struct {
	screen     tcell.Screen
	controller *controllers.ChatController

	transcript []entry
	streamText string
	typing     bool
	input      []rune

	typingIndicator string
}

// uiEvent carries a UI mutation into the tcell event loop
type uiEvent struct {
	tcell.EventTime
	apply func(*App)
}

// StartApp wires a controller from the global config and runs the UI until
// the user quits.
func StartApp(ctx context.Context) error {
	settings := config.Get()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}

	client := chat.NewClientWithTimeout(settings.ChatEndpoint(), settings.Server.Timeout)
	app := NewApp(screen, client)
	return app.Run(ctx)
}

// NewApp creates the chat screen around a streaming client
func NewApp(screen tcell.Screen, client chat.StreamingChatClient) *App {
	settings := config.Get()

	app := &App{
		screen:          screen,
		typingIndicator: settings.UI.TypingIndicator,
	}
	app.controller = controllers.NewChatController(client, app.sink(),
		controllers.WithInterruptNotice(settings.UI.InterruptNotice))
	return app
}

// Run initializes the screen and drives the event loop until quit
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer a.screen.Fini()

	logger.Info("chat UI started (session %s)", a.controller.Session().ID)
	a.draw()

	for {
		event := a.screen.PollEvent()
		switch event := event.(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			a.screen.Sync()
		case *uiEvent:
			event.apply(a)
		case *tcell.EventKey:
			if a.handleKey(ctx, event) {
				a.controller.Cancel()
				return nil
			}
		}
		a.draw()
	}
}

// handleKey processes one key press; returns true to quit
func (a *App) handleKey(ctx context.Context, event *tcell.EventKey) bool {
	switch event.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlD:
		return true
	case tcell.KeyEscape:
		a.controller.Cancel()
	case tcell.KeyEnter:
		a.submit(ctx)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.input) > 0 {
			a.input = a.input[:len(a.input)-1]
		}
	case tcell.KeyCtrlU:
		a.input = nil
	case tcell.KeyRune:
		a.input = append(a.input, event.Rune())
	}
	return false
}

// submit sends the input line to the controller. Whitespace-only input is a
// no-op and keeps the buffer.
func (a *App) submit(ctx context.Context) {
	text := string(a.input)
	if strings.TrimSpace(text) == "" {
		return
	}
	a.input = nil
	a.controller.Submit(ctx, text)
}

// post schedules a UI mutation on the event loop
func (a *App) post(apply func(*App)) {
	event := &uiEvent{apply: apply}
	event.SetEventNow()
	if err := a.screen.PostEvent(event); err != nil {
		logger.Warn("dropped UI update: %v", err)
	}
}

// sink adapts the app to the controller's render sink. Every callback posts
// into the event loop; the controller's supersede guard has already run by
// the time a closure is queued, and closures apply in order, so a cancelled
// stream's updates never land after its successor's.
func (a *App) sink() stream.Sink {
	return stream.SinkFuncs{
		UserMessageFunc: func(content string) {
			a.post(func(app *App) {
				app.transcript = append(app.transcript, entry{role: chat.RoleUser, content: content})
			})
		},
		AgentTypingFunc: func() {
			a.post(func(app *App) {
				app.typing = true
				app.streamText = ""
			})
		},
		AgentUpdateFunc: func(content string) {
			a.post(func(app *App) {
				app.typing = false
				app.streamText = content
			})
		},
		AgentDoneFunc: func(content string) {
			a.post(func(app *App) {
				app.typing = false
				app.streamText = ""
				app.transcript = append(app.transcript, entry{role: chat.RoleAgent, content: content})
			})
		},
		AgentErrorFunc: func(content string) {
			a.post(func(app *App) {
				app.typing = false
				app.streamText = ""
				app.transcript = append(app.transcript, entry{role: chat.RoleError, content: content})
			})
		},
	}
}
