package ws

import "github.com/kisaansahayak/sahayak/internal/domain"

// Frame types from client to gateway
const (
	TypeChat = "chat"
)

// Frame types from gateway to client
const (
	TypeChatResponse = "chat_response"
	TypeError        = "error"
)

// ClientFrame is a frame sent by the client.
type ClientFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// ChatResponseFrame carries a successful chat response. The response sits
// under data so its own type field does not collide with the frame type.
type ChatResponseFrame struct {
	Type      string              `json:"type"`
	RequestID string              `json:"request_id,omitempty"`
	Data      domain.ChatResponse `json:"data"`
}

// ErrorFrame reports a failed frame.
type ErrorFrame struct {
	Type      string           `json:"type"`
	RequestID string           `json:"request_id,omitempty"`
	Code      domain.ErrorCode `json:"code"`
	Error     string           `json:"error"`
}
