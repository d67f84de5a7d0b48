package history

import (
	"github.com/google/uuid"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

// NewSessionID returns a fresh derived-session identifier.
func NewSessionID() string {
	return "session_" + uuid.New().String()
}

// Partition splits a chronologically ordered message list into sessions in one
// pass. The first message always opens a session; afterwards a pause of at least
// rules.Gap between consecutive messages opens the next one. Sessions are
// returned most recent first. newID may be nil.
func Partition(messages []domain.Message, rules Rules, newID func() string) []domain.Session {
	if newID == nil {
		newID = NewSessionID
	}

	var sessions []domain.Session
	for i, msg := range messages {
		if i == 0 || msg.Timestamp.Sub(messages[i-1].Timestamp) >= rules.Gap {
			sessions = append(sessions, domain.Session{
				ID:        newID(),
				Title:     rules.Title(msg.Text),
				StartTime: msg.Timestamp,
			})
		}
		cur := &sessions[len(sessions)-1]
		cur.Messages = append(cur.Messages, msg)
		cur.EndTime = msg.Timestamp
	}

	for l, r := 0, len(sessions)-1; l < r; l, r = l+1, r-1 {
		sessions[l], sessions[r] = sessions[r], sessions[l]
	}
	return sessions
}

// Flatten concatenates sessions back into chronological message order.
func Flatten(sessions []domain.Session) []domain.Message {
	var out []domain.Message
	for i := len(sessions) - 1; i >= 0; i-- {
		out = append(out, sessions[i].Messages...)
	}
	return out
}
