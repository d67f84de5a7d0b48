package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat message. It is never mutated after creation.
type Message struct {
	ID        string      `json:"id" yaml:"id"`
	Text      string      `json:"text" yaml:"text"`
	IsUser    bool        `json:"isUser" yaml:"is_user"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
	Type      MessageType `json:"type,omitempty" yaml:"type,omitempty"`
	UserID    string      `json:"userId,omitempty" yaml:"user_id,omitempty"`
}

// NewMessageID returns a fresh random message identifier.
func NewMessageID() string {
	return uuid.New().String()
}

// Timestamp normalizes t to UTC with millisecond precision, the resolution
// persisted history carries.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
