package chat

import (
	"strings"
	"time"
)

// nodeState tracks one node's channel within a stream
type nodeState struct {
	content  strings.Builder
	complete bool
}

// Accumulator builds the streamed agent reply from incremental events. Text
// is accumulated per node so a node marked complete stops appending without
// affecting the others. Rendering always uses the full accumulated text, so
// repeated renders of the same state are idempotent.
type Accumulator struct {
	nodes      map[string]*nodeState
	eventCount int
	startTime  time.Time
	lastUpdate time.Time
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		nodes:     make(map[string]*nodeState),
		startTime: time.Now(),
	}
}

// Add applies one event and reports whether the rendered text changed.
// Content arriving on or after a node's complete flag is not appended.
func (a *Accumulator) Add(event StreamEvent) bool {
	a.eventCount++
	a.lastUpdate = time.Now()

	if event.Node == "" {
		return false
	}

	node := a.getOrCreate(event.Node)
	if event.Complete {
		node.complete = true
		return false
	}
	if node.complete || event.Content == "" {
		return false
	}

	node.content.WriteString(event.Content)
	return event.Node == NodeGeneralMessage
}

// Rendered returns the full text accumulated for the rendered channel.
func (a *Accumulator) Rendered() string {
	return a.Text(NodeGeneralMessage)
}

// Text returns the accumulated content for a node
func (a *Accumulator) Text(nodeName string) string {
	if node, exists := a.nodes[nodeName]; exists {
		return node.content.String()
	}
	return ""
}

// IsComplete reports whether a node has been marked complete
func (a *Accumulator) IsComplete(nodeName string) bool {
	if node, exists := a.nodes[nodeName]; exists {
		return node.complete
	}
	return false
}

// EventCount returns the number of events applied
func (a *Accumulator) EventCount() int {
	return a.eventCount
}

// Duration returns the time between the first and the most recent event
func (a *Accumulator) Duration() time.Duration {
	if a.lastUpdate.IsZero() {
		return 0
	}
	return a.lastUpdate.Sub(a.startTime)
}

func (a *Accumulator) getOrCreate(nodeName string) *nodeState {
	if node, exists := a.nodes[nodeName]; exists {
		return node
	}
	node := &nodeState{}
	a.nodes[nodeName] = node
	return node
}
