package domain

import "time"

// Session is a derived view over a user's flat message history: a contiguous run
// of messages without a long pause between them. Sessions are never stored.
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	StartTime time.Time `json:"startTime" yaml:"start_time"`
	EndTime   time.Time `json:"endTime" yaml:"end_time"`
	Messages  []Message `json:"messages" yaml:"messages"`
}

// Stats aggregates a user's history.
type Stats struct {
	TotalMessages int        `json:"totalMessages" yaml:"total_messages"`
	UserMessages  int        `json:"userMessages" yaml:"user_messages"`
	BotMessages   int        `json:"botMessages" yaml:"bot_messages"`
	TotalSessions int        `json:"totalSessions" yaml:"total_sessions"`
	OldestMessage *time.Time `json:"oldestMessage,omitempty" yaml:"oldest_message,omitempty"`
	NewestMessage *time.Time `json:"newestMessage,omitempty" yaml:"newest_message,omitempty"`
}

// ExportDocument is the backup document produced by a history export.
type ExportDocument struct {
	User       User      `json:"user" yaml:"user"`
	Messages   []Message `json:"messages" yaml:"messages"`
	Sessions   []Session `json:"sessions" yaml:"sessions"`
	Stats      Stats     `json:"stats" yaml:"stats"`
	ExportedAt time.Time `json:"exportedAt" yaml:"exported_at"`
}
