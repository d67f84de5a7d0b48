package policy

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), DefaultPolicy, DefaultMaxMessageLength)
	require.NoError(t, err)
	return e
}

func TestDefaultPolicyDecisions(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "plain", message: "When do I sow wheat?", want: DecisionAllow},
		{name: "empty", message: "", want: DecisionInvalidMessage},
		{name: "whitespace", message: " \n\t ", want: DecisionInvalidMessage},
		{name: "at limit", message: strings.Repeat("a", 1000), want: DecisionAllow},
		{name: "over limit", message: strings.Repeat("a", 1001), want: DecisionTooLong},
		{name: "multibyte at limit", message: strings.Repeat("धान", 333), want: DecisionAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(context.Background(), tt.message, "s1", "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCustomMaxLength(t *testing.T) {
	e, err := NewEngine(context.Background(), DefaultPolicy, 5)
	require.NoError(t, err)

	got, err := e.Evaluate(context.Background(), "123456", "", "")
	require.NoError(t, err)
	assert.Equal(t, DecisionTooLong, got)
}

func TestNewEngineRejectsBadPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package chat_policy\n decision = {", 0)
	assert.Error(t, err)
}
