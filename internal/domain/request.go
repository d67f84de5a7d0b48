package domain

import "time"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// ChatResponse is returned to the client after a successful round trip.
type ChatResponse struct {
	Message   string      `json:"message"`
	Type      MessageType `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Model     string      `json:"model"`
}

// QueryRequest is sent to the RAG service's /query endpoint.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// QueryResponse is the RAG service's answer.
type QueryResponse struct {
	Answer string      `json:"answer"`
	Type   MessageType `json:"type,omitempty"`
}

// ErrorResponse is the JSON error body used by every gateway endpoint.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code,omitempty"`
}

// HistoryResponse is the body of GET /api/chat/history/:sessionId.
type HistoryResponse struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
}

// TipsResponse is the body of GET /api/tips.
type TipsResponse struct {
	Tips      []string  `json:"tips"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	PythonAPI string    `json:"python_api"`
}
