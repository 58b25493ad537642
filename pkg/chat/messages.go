package chat

import (
	"strings"
	"time"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleError = "error"
)

func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   strings.TrimSpace(content),
		Timestamp: time.Now(),
	}
}

func NewAgentMessage(content string) Message {
	return Message{
		Role:      RoleAgent,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewErrorMessage(content string) Message {
	return Message{
		Role:      RoleError,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

func (m Message) IsAgent() bool {
	return m.Role == RoleAgent
}

func (m Message) IsError() bool {
	return m.Role == RoleError
}

func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}
