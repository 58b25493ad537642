package stream

// Sink is the rendering surface for one chat session. The controller drives
// it with full replacement text, never deltas, so any missed update is healed
// by the next one. Implementations are called from a single goroutine.
type Sink interface {
	// UserMessage renders a submitted user message. User messages are
	// immutable once shown.
	UserMessage(content string)

	// AgentTyping creates the agent reply placeholder with a typing
	// indicator. Called once per submission, before any content arrives.
	AgentTyping()

	// AgentUpdate replaces the agent reply body with the full accumulated
	// text so far.
	AgentUpdate(content string)

	// AgentDone finalizes the agent reply with its complete text.
	AgentDone(content string)

	// AgentError replaces the agent reply body with a static error text.
	AgentError(content string)
}

// SinkFuncs is a function adapter for Sink, in the spirit of http.HandlerFunc.
// Nil fields are no-ops.
type SinkFuncs struct {
	UserMessageFunc func(content string)
	AgentTypingFunc func()
	AgentUpdateFunc func(content string)
	AgentDoneFunc   func(content string)
	AgentErrorFunc  func(content string)
}

func (s SinkFuncs) UserMessage(content string) {
	if s.UserMessageFunc != nil {
		s.UserMessageFunc(content)
	}
}

func (s SinkFuncs) AgentTyping() {
	if s.AgentTypingFunc != nil {
		s.AgentTypingFunc()
	}
}

func (s SinkFuncs) AgentUpdate(content string) {
	if s.AgentUpdateFunc != nil {
		s.AgentUpdateFunc(content)
	}
}

func (s SinkFuncs) AgentDone(content string) {
	if s.AgentDoneFunc != nil {
		s.AgentDoneFunc(content)
	}
}

func (s SinkFuncs) AgentError(content string) {
	if s.AgentErrorFunc != nil {
		s.AgentErrorFunc(content)
	}
}

var _ Sink = SinkFuncs{}
