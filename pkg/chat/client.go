package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrServerStatus indicates the server answered with a non-2xx status before
// any streaming happened.
var ErrServerStatus = errors.New("server returned non-success status")

// StreamingChatClient is the outbound interface of the chat backend: submit
// one user message and receive the reply as a stream of events. The returned
// channel is closed when the stream ends; cancellation of ctx terminates the
// read loop.
type StreamingChatClient interface {
	StreamMessage(ctx context.Context, userMessage, sessionID string) (<-chan StreamEvent, error)
}

// Client talks to the chat endpoint over HTTP
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client with no request timeout. A stalled connection
// blocks only its own stream until cancelled or closed by the server.
func NewClient(endpoint string) *Client {
	return NewClientWithTimeout(endpoint, 0)
}

// NewClientWithTimeout creates a client with a whole-request timeout
func NewClientWithTimeout(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// StreamMessage posts the user message and session id as multipart form
// fields and returns a channel of parsed stream events. A non-2xx status is
// reported as an error wrapping ErrServerStatus; no events are read in that
// case.
func (c *Client) StreamMessage(ctx context.Context, userMessage, sessionID string) (<-chan StreamEvent, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if err := form.WriteField("user_message", userMessage); err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if err := form.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrServerStatus, resp.StatusCode)
	}

	events := make(chan StreamEvent, 64)
	go c.readStream(ctx, resp.Body, events)

	return events, nil
}
