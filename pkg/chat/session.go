package chat

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies one client run to the server so it can correlate turns.
// The identifier is opaque, generated once, and never persisted.
type Session struct {
	ID      string
	Started time.Time
}

func NewSession() Session {
	return Session{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
}
