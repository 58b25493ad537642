package chat

// Event types emitted by the server stream. Each SSE record carries one
// JSON-encoded event tagged with a type and the graph node that produced it.
const (
	EventToken    = "token"
	EventNode     = "node"
	EventMessage  = "message"
	EventTool     = "tool"
	EventUsage    = "usage"
	EventComplete = "complete"
	EventError    = "error"
)

// NodeGeneralMessage is the only node whose fragments are rendered to the
// user. All other nodes (intent_classifier, rag_executor, ...) are internal
// transitions.
const NodeGeneralMessage = "general_message"

// StreamEvent is a parsed unit of the server's event stream.
type StreamEvent struct {
	Type        string  `json:"type"`
	StreamID    string  `json:"stream_id"`
	Node        string  `json:"node"`
	Content     string  `json:"content"`
	Complete    bool    `json:"complete"`
	TokensSoFar int     `json:"tokens_so_far"`
	Timestamp   float64 `json:"timestamp"`

	// Tool and usage payloads
	ToolResult   string `json:"tool_result,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	TotalTokens  int    `json:"total_tokens,omitempty"`

	// Error payloads
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`

	// Err carries a transport-level failure from the reader. Never set from
	// the wire.
	Err error `json:"-"`
}

// Renderable reports whether this event contributes text to the agent reply:
// only un-complete fragments from the general message node are rendered.
func (e StreamEvent) Renderable() bool {
	return e.Node == NodeGeneralMessage && !e.Complete
}

// IsError reports whether the event is a server-emitted error record.
func (e StreamEvent) IsError() bool {
	return e.Type == EventError
}

// IsUsage reports whether the event is the final token usage record.
func (e StreamEvent) IsUsage() bool {
	return e.Type == EventUsage
}
