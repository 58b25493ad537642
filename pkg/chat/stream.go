package chat

import (
	"context"
	"io"

	"github.com/accesstbilq/jovian/pkg/logger"
)

// readStream tokenizes the response body into records and delivers parsed
// events until end-of-stream. Malformed records are skipped without ending
// the stream. The context is checked at every delivery so a cancelled stream
// stops producing promptly.
func (c *Client) readStream(ctx context.Context, body io.ReadCloser, events chan<- StreamEvent) {
	defer close(events)
	defer body.Close()

	scanner := NewRecordScanner(body)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		event, ok := ParseRecord(scanner.Bytes())
		if !ok {
			logger.Debug("skipping malformed stream record (%d bytes)", len(scanner.Bytes()))
			continue
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return
		}
	}

	// Cancellation surfaces as a read error on the body; the controller
	// already knows about its own cancel, so only genuine transport
	// failures are forwarded.
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Error("stream read failed: %v", err)
		select {
		case events <- StreamEvent{Err: err}:
		case <-ctx.Done():
		}
	}
}
