package chat

// Conversation is the in-memory transcript of one client run. It is a value
// type; mutation helpers return a new Conversation.
type Conversation struct {
	Messages []Message
}

func NewConversation() Conversation {
	return Conversation{Messages: []Message{}}
}

func AddMessage(conv Conversation, msg Message) Conversation {
	messages := make([]Message, len(conv.Messages), len(conv.Messages)+1)
	copy(messages, conv.Messages)
	return Conversation{Messages: append(messages, msg)}
}

func GetMessages(conv Conversation) []Message {
	return conv.Messages
}

func GetMessageCount(conv Conversation) int {
	return len(conv.Messages)
}

func GetLastMessage(conv Conversation) (Message, bool) {
	if len(conv.Messages) == 0 {
		return Message{}, false
	}
	return conv.Messages[len(conv.Messages)-1], true
}

func GetLastAgentMessage(conv Conversation) (Message, bool) {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].IsAgent() {
			return conv.Messages[i], true
		}
	}
	return Message{}, false
}

func GetLastUserMessage(conv Conversation) (Message, bool) {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].IsUser() {
			return conv.Messages[i], true
		}
	}
	return Message{}, false
}

func GetMessagesByRole(conv Conversation, role string) []Message {
	var filtered []Message
	for _, msg := range conv.Messages {
		if msg.Role == role {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}
