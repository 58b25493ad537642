package controllers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accesstbilq/jovian/pkg/chat"
	"github.com/accesstbilq/jovian/pkg/stream"
)

// recordingSink captures sink calls in order
type recordingSink struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingSink) record(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *recordingSink) UserMessage(content string) { r.record("user:%s", content) }
func (r *recordingSink) AgentTyping()               { r.record("typing") }
func (r *recordingSink) AgentUpdate(content string) { r.record("update:%s", content) }
func (r *recordingSink) AgentDone(content string)   { r.record("done:%s", content) }
func (r *recordingSink) AgentError(content string)  { r.record("error:%s", content) }

func (r *recordingSink) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

var _ stream.Sink = (*recordingSink)(nil)

// fakeClient scripts StreamMessage behavior per test
type fakeClient struct {
	mu         sync.Mutex
	calls      int
	streamFunc func(ctx context.Context, userMessage, sessionID string) (<-chan chat.StreamEvent, error)
}

func (f *fakeClient) StreamMessage(ctx context.Context, userMessage, sessionID string) (<-chan chat.StreamEvent, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.streamFunc(ctx, userMessage, sessionID)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// scriptedEvents returns a client that replays the given events and closes
func scriptedEvents(events ...chat.StreamEvent) *fakeClient {
	return &fakeClient{
		streamFunc: func(ctx context.Context, userMessage, sessionID string) (<-chan chat.StreamEvent, error) {
			ch := make(chan chat.StreamEvent, len(events))
			for _, event := range events {
				ch <- event
			}
			close(ch)
			return ch, nil
		},
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("turn did not finish")
	}
}

func TestSubmitWhitespaceIsNoOp(t *testing.T) {
	sink := &recordingSink{}
	client := scriptedEvents()
	cc := NewChatController(client, sink)

	for _, input := range []string{"", "   ", "\n\t  "} {
		done := cc.Submit(context.Background(), input)
		assert.Nil(t, done)
	}

	assert.Zero(t, client.callCount())
	assert.Empty(t, sink.snapshot())
	assert.Empty(t, cc.History())
}

func TestSubmitStreamsReply(t *testing.T) {
	sink := &recordingSink{}
	client := scriptedEvents(
		chat.StreamEvent{Type: chat.EventNode, Node: "intent_classifier"},
		chat.StreamEvent{Type: chat.EventToken, Node: chat.NodeGeneralMessage, Content: "Hi"},
		chat.StreamEvent{Type: chat.EventToken, Node: chat.NodeGeneralMessage, Content: " there"},
		chat.StreamEvent{Type: chat.EventMessage, Node: chat.NodeGeneralMessage, Content: "Hi there", Complete: true},
		chat.StreamEvent{Type: chat.EventUsage, TotalTokens: 8},
	)
	cc := NewChatController(client, sink)

	waitDone(t, cc.Submit(context.Background(), "hello"))

	assert.Equal(t, []string{
		"user:hello",
		"typing",
		"update:Hi",
		"update:Hi there",
		"done:Hi there",
	}, sink.snapshot())

	history := cc.History()
	require.Len(t, history, 2)
	assert.True(t, history[0].IsUser())
	assert.Equal(t, "Hi there", history[1].Content)
}

func TestSubmitTrimsUserMessage(t *testing.T) {
	sink := &recordingSink{}
	cc := NewChatController(scriptedEvents(), sink)

	waitDone(t, cc.Submit(context.Background(), "  hello  "))

	ops := sink.snapshot()
	require.NotEmpty(t, ops)
	assert.Equal(t, "user:hello", ops[0])
}

func TestSubmitServerErrorRendersExactText(t *testing.T) {
	sink := &recordingSink{}
	client := &fakeClient{
		streamFunc: func(ctx context.Context, userMessage, sessionID string) (<-chan chat.StreamEvent, error) {
			return nil, fmt.Errorf("%w: 500", chat.ErrServerStatus)
		},
	}
	cc := NewChatController(client, sink)

	waitDone(t, cc.Submit(context.Background(), "hello"))

	assert.Equal(t, []string{"user:hello", "typing", "error:Server error."}, sink.snapshot())
}

func TestSubmitTransportFailureRendersInterrupted(t *testing.T) {
	sink := &recordingSink{}
	client := scriptedEvents(
		chat.StreamEvent{Type: chat.EventToken, Node: chat.NodeGeneralMessage, Content: "par"},
		chat.StreamEvent{Err: fmt.Errorf("connection reset")},
	)
	cc := NewChatController(client, sink)

	waitDone(t, cc.Submit(context.Background(), "hello"))

	ops := sink.snapshot()
	assert.Contains(t, ops, "update:par")
	assert.Equal(t, "error:"+InterruptedText, ops[len(ops)-1])
}

func TestSubmitPassesSessionID(t *testing.T) {
	var gotSession string
	client := &fakeClient{
		streamFunc: func(ctx context.Context, userMessage, sessionID string) (<-chan chat.StreamEvent, error) {
			gotSession = sessionID
			ch := make(chan chat.StreamEvent)
			close(ch)
			return ch, nil
		},
	}
	cc := NewChatController(client, &recordingSink{})

	waitDone(t, cc.Submit(context.Background(), "hello"))

	assert.Equal(t, cc.Session().ID, gotSession)
}

func TestRapidSubmissionSupersedesFirstStream(t *testing.T) {
	sink := &recordingSink{}

	firstStarted := make(chan struct{})
	client := &fakeClient{}
	client.streamFunc = func(ctx context.Context, userMessage, sessionID string) (<-chan chat.StreamEvent, error) {
		ch := make(chan chat.StreamEvent, 4)
		if userMessage == "first" {
			go func() {
				defer close(ch)
				ch <- chat.StreamEvent{Node: chat.NodeGeneralMessage, Content: "FIRST-partial"}
				close(firstStarted)
				// Hold the stream open until it is cancelled, then try
				// one more fragment.
				<-ctx.Done()
				ch <- chat.StreamEvent{Node: chat.NodeGeneralMessage, Content: "FIRST-late"}
			}()
		} else {
			go func() {
				defer close(ch)
				<-firstStarted
				ch <- chat.StreamEvent{Node: chat.NodeGeneralMessage, Content: "SECOND"}
			}()
		}
		return ch, nil
	}

	cc := NewChatController(client, sink)

	first := cc.Submit(context.Background(), "first")
	<-firstStarted
	second := cc.Submit(context.Background(), "second")

	waitDone(t, second)
	waitDone(t, first)

	ops := sink.snapshot()
	var sawSecondTyping bool
	for _, op := range ops {
		if op == "user:second" {
			sawSecondTyping = true
		}
		if sawSecondTyping {
			assert.NotContains(t, op, "FIRST", "superseded stream wrote to the UI: %v", ops)
		}
	}
	assert.Contains(t, ops, "update:SECOND")
	assert.Contains(t, ops, "done:SECOND")
}

func TestExplicitCancelKeepsPartialByDefault(t *testing.T) {
	sink := &recordingSink{}
	started := make(chan struct{})
	client := &fakeClient{
		streamFunc: func(ctx context.Context, userMessage, sessionID string) (<-chan chat.StreamEvent, error) {
			ch := make(chan chat.StreamEvent, 1)
			go func() {
				defer close(ch)
				ch <- chat.StreamEvent{Node: chat.NodeGeneralMessage, Content: "partial"}
				close(started)
				<-ctx.Done()
			}()
			return ch, nil
		},
	}
	cc := NewChatController(client, sink)

	done := cc.Submit(context.Background(), "hello")
	<-started
	cc.Cancel()
	waitDone(t, done)

	for _, op := range sink.snapshot() {
		assert.NotContains(t, op, InterruptedText)
	}
}

func TestExplicitCancelRendersNoticeWhenEnabled(t *testing.T) {
	sink := &recordingSink{}
	started := make(chan struct{})
	client := &fakeClient{
		streamFunc: func(ctx context.Context, userMessage, sessionID string) (<-chan chat.StreamEvent, error) {
			ch := make(chan chat.StreamEvent, 1)
			go func() {
				defer close(ch)
				ch <- chat.StreamEvent{Node: chat.NodeGeneralMessage, Content: "partial"}
				close(started)
				<-ctx.Done()
			}()
			return ch, nil
		},
	}
	cc := NewChatController(client, sink, WithInterruptNotice(true))

	done := cc.Submit(context.Background(), "hello")
	<-started
	cc.Cancel()
	waitDone(t, done)

	ops := sink.snapshot()
	assert.Equal(t, "error:"+InterruptedText, ops[len(ops)-1])
}

func TestServerErrorEventsAreNotRendered(t *testing.T) {
	sink := &recordingSink{}
	client := scriptedEvents(
		chat.StreamEvent{Type: chat.EventError, Message: "Stream error: boom"},
		chat.StreamEvent{Type: chat.EventToken, Node: chat.NodeGeneralMessage, Content: "still fine"},
	)
	cc := NewChatController(client, sink)

	waitDone(t, cc.Submit(context.Background(), "hello"))

	ops := sink.snapshot()
	assert.Contains(t, ops, "update:still fine")
	assert.Contains(t, ops, "done:still fine")
	for _, op := range ops {
		assert.NotContains(t, op, "boom")
	}
}

func TestWithSessionOverride(t *testing.T) {
	session := chat.NewSession()
	cc := NewChatController(scriptedEvents(), &recordingSink{}, WithSession(session))
	assert.Equal(t, session.ID, cc.Session().ID)
}
