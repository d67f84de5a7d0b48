// Package rag is the client for the Python retrieval-augmented-generation service.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

// DefaultTimeout bounds a single upstream query.
const DefaultTimeout = 30 * time.Second

const errInternal = "Internal server error. Please try again later."

// Client is the RAG service client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new RAG client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// upstreamError is the body the RAG service sends with non-2xx responses.
type upstreamError struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// StatusError is a non-2xx response from the RAG service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("RAG API error [%d]: %s", e.StatusCode, e.Message)
}

// Query sends one question to the RAG service. Failures are returned as
// *domain.GatewayError.
func (c *Client) Query(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, domain.NewGatewayError(domain.ErrorCodeInternalError, errInternal,
			fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewGatewayError(domain.ErrorCodeInternalError, errInternal,
			fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, Classify(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		var errResp upstreamError
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			switch {
			case errResp.Error != "":
				msg = errResp.Error
			case errResp.Detail != "":
				msg = errResp.Detail
			}
		}
		return nil, Classify(&StatusError{StatusCode: resp.StatusCode, Message: msg})
	}

	var result domain.QueryResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, domain.NewGatewayError(domain.ErrorCodeInternalError, errInternal,
			fmt.Errorf("failed to unmarshal response: %w", err))
	}
	return &result, nil
}

// Classify maps an upstream failure onto the gateway error taxonomy.
func Classify(err error) *domain.GatewayError {
	if err == nil {
		return nil
	}

	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusBadRequest {
			msg := statusErr.Message
			if msg == "" {
				msg = "Invalid request to AI service"
			}
			return domain.NewGatewayError(domain.ErrorCodeInvalidRequest, msg, err)
		}
		return domain.NewGatewayError(domain.ErrorCodeInternalError, errInternal, err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.NewGatewayError(domain.ErrorCodeServiceUnavailable,
			"AI service is temporarily unavailable. Please ensure the Python RAG server is running.", err)
	}

	if isTimeout(err) {
		gw := domain.NewGatewayError(domain.ErrorCodeServiceUnavailable,
			"AI service timed out. Please try again later.", err)
		gw.Status = http.StatusGatewayTimeout
		return gw
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF) {
		return domain.NewGatewayError(domain.ErrorCodeConnectionError,
			"Cannot connect to AI service. Please check if the Python server is running.", err)
	}

	return domain.NewGatewayError(domain.ErrorCodeInternalError, errInternal, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
