package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

var base = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func msgAt(id string, offset time.Duration, text string, isUser bool) domain.Message {
	return domain.Message{ID: id, Text: text, IsUser: isUser, Timestamp: base.Add(offset), UserID: "u1"}
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

func TestPartitionEmpty(t *testing.T) {
	assert.Empty(t, Partition(nil, DefaultRules(), nil))
}

func TestPartitionGapBoundary(t *testing.T) {
	tests := []struct {
		name     string
		gap      time.Duration
		sessions int
	}{
		{name: "exactly one hour splits", gap: 3600000 * time.Millisecond, sessions: 2},
		{name: "one millisecond short stays", gap: 3599999 * time.Millisecond, sessions: 1},
		{name: "out of order stays", gap: -time.Minute, sessions: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages := []domain.Message{
				msgAt("m1", 0, "hello", true),
				msgAt("m2", tt.gap, "hi", false),
			}
			assert.Len(t, Partition(messages, DefaultRules(), nil), tt.sessions)
		})
	}
}

func TestPartitionOrdersMostRecentFirst(t *testing.T) {
	messages := []domain.Message{
		msgAt("m1", 0, "How do I grow rice?", true),
		msgAt("m2", time.Minute, "Flood the field.", false),
		msgAt("m3", 3*time.Hour, "Tomato leaves are curling", true),
		msgAt("m4", 3*time.Hour+time.Minute, "Check for whitefly.", false),
		msgAt("m5", 10*time.Hour, "thanks a lot for everything", true),
	}

	sessions := Partition(messages, DefaultRules(), seqIDs())
	require.Len(t, sessions, 3)

	assert.Equal(t, "s3", sessions[0].ID)
	assert.Equal(t, "thanks a lot for", sessions[0].Title)
	assert.Equal(t, "🍅 Tomato Growing", sessions[1].Title)
	assert.Equal(t, "🌾 Rice Cultivation", sessions[2].Title)

	assert.Equal(t, base, sessions[2].StartTime)
	assert.Equal(t, base.Add(time.Minute), sessions[2].EndTime)
	assert.Len(t, sessions[1].Messages, 2)
}

func TestPartitionFlattenReproducesInput(t *testing.T) {
	offsets := []time.Duration{0, time.Minute, 2 * time.Hour, 2*time.Hour + 59*time.Minute,
		4 * time.Hour, 4*time.Hour + time.Second, 30 * time.Hour}
	var messages []domain.Message
	for i, off := range offsets {
		messages = append(messages, msgAt(fmt.Sprintf("m%d", i), off, fmt.Sprintf("text %d", i), i%2 == 0))
	}

	for n := 0; n <= len(messages); n++ {
		input := messages[:n]
		got := Flatten(Partition(input, DefaultRules(), nil))
		if n == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, input, got, "prefix of length %d", n)
	}
}
