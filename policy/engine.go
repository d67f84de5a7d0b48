// Package policy evaluates the admission policy for chat requests with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the chat admission policy.
const (
	DecisionAllow          = "allow"
	DecisionInvalidMessage = "invalid_message"
	DecisionTooLong        = "message_too_long"
)

// DefaultMaxMessageLength is the longest accepted chat message, in characters.
const DefaultMaxMessageLength = 1000

// Engine is the OPA policy engine.
type Engine struct {
	query     rego.PreparedEvalQuery
	maxLength int
}

// NewEngine creates a new policy engine with the given policy content.
// maxLength is exposed to the policy as input.max_length.
func NewEngine(ctx context.Context, policyContent string, maxLength int) (*Engine, error) {
	r := rego.New(
		rego.Query("data.chat_policy.decision"),
		rego.Module("chat_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}
	return &Engine{query: query, maxLength: maxLength}, nil
}

// Evaluate returns the policy decision for a chat request.
func (e *Engine) Evaluate(ctx context.Context, message, sessionID, userID string) (string, error) {
	input := map[string]interface{}{
		"message":    message,
		"session_id": sessionID,
		"user_id":    userID,
		"max_length": e.maxLength,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default, so an empty result means it was replaced
		// by one that does not.
		return DecisionAllow, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package chat_policy

default decision = "allow"

# Empty or whitespace-only messages
decision = "invalid_message" {
	trim_space(input.message) == ""
}

# Length is counted in characters, not bytes
decision = "message_too_long" {
	trim_space(input.message) != ""
	count(input.message) > input.max_length
}
`
