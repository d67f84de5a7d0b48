// Package domain defines the core domain models for the chat gateway and client.
package domain

// ErrorCode is the machine-readable classification surfaced to chat clients.
type ErrorCode string

const (
	ErrorCodeInvalidMessage     ErrorCode = "INVALID_MESSAGE"
	ErrorCodeMessageTooLong     ErrorCode = "MESSAGE_TOO_LONG"
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrorCodeConnectionError    ErrorCode = "CONNECTION_ERROR"
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrorCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrorCodeUnhandled          ErrorCode = "UNHANDLED_ERROR"
	ErrorCodeTipsError          ErrorCode = "TIPS_ERROR"
)

// MessageType is the optional kind attached to assistant messages by the RAG service.
type MessageType string

const (
	MessageTypeResponse MessageType = "response"
)

// ExportFormat names a history export encoding.
type ExportFormat string

const (
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatYAML     ExportFormat = "yaml"
	ExportFormatMarkdown ExportFormat = "markdown"
)
