package domain

import (
	"fmt"
	"net/http"
)

// RateLimitMessage is the error text sent when a client exceeds the request ceiling.
const RateLimitMessage = "Too many requests from this IP, please try again later."

// GatewayError is a classified failure of a chat round trip. It carries the code
// and HTTP status surfaced to the client plus the underlying cause.
type GatewayError struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError builds a GatewayError with the status conventionally used for code.
func NewGatewayError(code ErrorCode, message string, err error) *GatewayError {
	return &GatewayError{
		Code:    code,
		Status:  StatusFor(code),
		Message: message,
		Err:     err,
	}
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code ErrorCode) int {
	switch code {
	case ErrorCodeInvalidMessage, ErrorCodeMessageTooLong, ErrorCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrorCodeServiceUnavailable, ErrorCodeConnectionError:
		return http.StatusServiceUnavailable
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
