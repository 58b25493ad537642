package controllers

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/accesstbilq/jovian/pkg/chat"
	"github.com/accesstbilq/jovian/pkg/logger"
	"github.com/accesstbilq/jovian/pkg/stream"
)

// User-visible terminal messages. ServerErrorText is rendered verbatim on a
// non-2xx response; InterruptedText on a mid-stream failure or an explicit
// cancel when the interrupt notice is enabled.
const (
	ServerErrorText = "Server error."
	InterruptedText = "Response interrupted."
)

// ChatController owns one chat session: the session identifier, the
// conversation transcript, and the single in-flight stream. Starting a new
// submission supersedes the previous stream; a superseded stream never
// touches the sink again, enforced by a per-submission generation number on
// top of context cancellation.
type ChatController struct {
	client  chat.StreamingChatClient
	sink    stream.Sink
	session chat.Session

	interruptNotice bool

	mu           sync.Mutex
	conversation chat.Conversation
	cancel       context.CancelFunc
	generation   int
}

// Option configures a ChatController
type Option func(*ChatController)

// WithInterruptNotice controls whether an explicitly cancelled stream renders
// InterruptedText (true) or silently keeps the partial text (false, the
// default). Streams superseded by a new submission never render either way.
func WithInterruptNotice(enabled bool) Option {
	return func(cc *ChatController) {
		cc.interruptNotice = enabled
	}
}

// WithSession overrides the generated session identifier
func WithSession(session chat.Session) Option {
	return func(cc *ChatController) {
		cc.session = session
	}
}

// NewChatController creates a controller with a fresh session
func NewChatController(client chat.StreamingChatClient, sink stream.Sink, opts ...Option) *ChatController {
	cc := &ChatController{
		client:       client,
		sink:         sink,
		session:      chat.NewSession(),
		conversation: chat.NewConversation(),
	}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// Submit starts a new turn: it cancels any in-flight stream, renders the user
// message and the agent placeholder, and streams the reply asynchronously.
// Whitespace-only input is a no-op producing no request and no UI elements;
// the returned channel is nil in that case, otherwise it closes when the turn
// ends.
func (cc *ChatController) Submit(ctx context.Context, text string) <-chan struct{} {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	cc.mu.Lock()
	if cc.cancel != nil {
		cc.cancel()
	}
	cc.generation++
	generation := cc.generation

	streamCtx, cancel := context.WithCancel(ctx)
	cc.cancel = cancel

	cc.conversation = chat.AddMessage(cc.conversation, chat.NewUserMessage(trimmed))
	cc.sink.UserMessage(trimmed)
	cc.sink.AgentTyping()
	cc.mu.Unlock()

	logger.Debug("submitting turn %d (session %s)", generation, cc.session.ID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		cc.runStream(streamCtx, generation, trimmed)
	}()
	return done
}

// Cancel aborts the in-flight stream, if any. Unlike supersession by a new
// submission, an explicit cancel may render the interrupt notice.
func (cc *ChatController) Cancel() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.cancel != nil {
		cc.cancel()
	}
}

// Session returns the session identity sent with every request
func (cc *ChatController) Session() chat.Session {
	return cc.session
}

// History returns the transcript so far
func (cc *ChatController) History() []chat.Message {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return chat.GetMessages(cc.conversation)
}

// runStream drives one turn from request to end-of-stream
func (cc *ChatController) runStream(ctx context.Context, generation int, text string) {
	events, err := cc.client.StreamMessage(ctx, text, cc.session.ID)
	if err != nil {
		cc.finishWithError(ctx, generation, err)
		return
	}

	acc := chat.NewAccumulator()
	for event := range events {
		if event.Err != nil {
			logger.Error("stream failed mid-turn: %v", event.Err)
			cc.render(generation, func() {
				cc.sink.AgentError(InterruptedText)
				cc.conversation = chat.AddMessage(cc.conversation, chat.NewErrorMessage(InterruptedText))
			})
			return
		}
		if event.IsError() {
			// Server-emitted error records are not rendered; the stream
			// decides whether to continue.
			logger.Warn("server error event: %s", event.Message)
			continue
		}
		if event.IsUsage() {
			logger.Debug("token usage: in=%d out=%d total=%d",
				event.InputTokens, event.OutputTokens, event.TotalTokens)
			continue
		}
		if acc.Add(event) {
			cc.render(generation, func() {
				cc.sink.AgentUpdate(acc.Rendered())
			})
		}
	}

	if ctx.Err() != nil {
		// Cancelled. Superseded streams are blocked by the generation
		// guard; an explicit cancel renders per the interrupt option.
		if cc.interruptNotice {
			cc.render(generation, func() {
				cc.sink.AgentError(InterruptedText)
				cc.conversation = chat.AddMessage(cc.conversation, chat.NewErrorMessage(InterruptedText))
			})
		}
		return
	}

	final := acc.Rendered()
	logger.Debug("turn %d complete: %d events, %s", generation, acc.EventCount(), acc.Duration())
	cc.render(generation, func() {
		cc.sink.AgentDone(final)
		cc.conversation = chat.AddMessage(cc.conversation, chat.NewAgentMessage(final))
	})
}

// finishWithError maps a request-level failure onto the sink
func (cc *ChatController) finishWithError(ctx context.Context, generation int, err error) {
	switch {
	case errors.Is(err, chat.ErrServerStatus):
		logger.Error("chat request rejected: %v", err)
		cc.render(generation, func() {
			cc.sink.AgentError(ServerErrorText)
			cc.conversation = chat.AddMessage(cc.conversation, chat.NewErrorMessage(ServerErrorText))
		})
	case ctx.Err() != nil:
		if cc.interruptNotice {
			cc.render(generation, func() {
				cc.sink.AgentError(InterruptedText)
			})
		}
	default:
		logger.Error("chat request failed: %v", err)
		cc.render(generation, func() {
			cc.sink.AgentError(InterruptedText)
			cc.conversation = chat.AddMessage(cc.conversation, chat.NewErrorMessage(InterruptedText))
		})
	}
}

// render runs fn only if the stream that requested it is still current. All
// sink access and conversation mutation is serialized here, so a superseded
// stream can never write after its successor has begun.
func (cc *ChatController) render(generation int, fn func()) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if generation != cc.generation {
		return
	}
	fn()
}
