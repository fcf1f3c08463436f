package store

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation log, immutable once saved.
type Turn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
