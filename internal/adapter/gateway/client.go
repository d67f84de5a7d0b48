// Package gateway is the chat client's connection to the KisaanSahayak gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

// DefaultTimeout bounds every gateway call.
const DefaultTimeout = 30 * time.Second

// Client talks to the gateway's /api routes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new gateway client. baseURL includes the /api prefix.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Send posts one chat message. Failures are returned as *domain.GatewayError
// whose Message is fit to show the user.
func (c *Client) Send(ctx context.Context, text, sessionID, userID string) (*domain.ChatResponse, error) {
	if sessionID == "" {
		sessionID = "default"
	}
	req := domain.ChatRequest{Message: text, SessionID: sessionID, UserID: userID}

	var resp domain.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History fetches the gateway's copy of a session.
func (c *Client) History(ctx context.Context, sessionID string) (*domain.HistoryResponse, error) {
	if sessionID == "" {
		sessionID = "default"
	}
	var resp domain.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/chat/history/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tips fetches the farming tips.
func (c *Client) Tips(ctx context.Context) (*domain.TipsResponse, error) {
	var resp domain.TipsResponse
	if err := c.do(ctx, http.MethodGet, "/tips", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Healthy reports whether the gateway answers its health check.
func (c *Client) Healthy(ctx context.Context) bool {
	var resp domain.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		c.logger.Debug("health check failed", zap.Error(err))
		return false
	}
	return resp.Status == "healthy"
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return domain.NewGatewayError(domain.ErrorCodeInternalError, "An unexpected error occurred",
				fmt.Errorf("failed to marshal request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return domain.NewGatewayError(domain.ErrorCodeInternalError, "An unexpected error occurred",
			fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("gateway request", zap.String("method", method), zap.String("path", path))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return domain.NewGatewayError(domain.ErrorCodeInternalError, "An unexpected error occurred",
			fmt.Errorf("failed to unmarshal response: %w", err))
	}
	return nil
}

func transportError(err error) *domain.GatewayError {
	msg := "Network error. Please check your connection."
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		msg = "Request timeout. Please try again."
	}
	gw := domain.NewGatewayError(domain.ErrorCodeConnectionError, msg, err)
	gw.Status = 0
	return gw
}

// statusError turns a non-2xx gateway response into the message shown to the user.
func statusError(status int, body []byte) *domain.GatewayError {
	var errResp domain.ErrorResponse
	_ = json.Unmarshal(body, &errResp)

	code := errResp.Code
	if code == "" {
		code = codeForStatus(status)
	}

	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = orDefault(errResp.Error, "Invalid request")
	case http.StatusTooManyRequests:
		msg = "Too many requests. Please wait a moment and try again."
	case http.StatusInternalServerError:
		msg = "Server error. Please try again later."
	case http.StatusServiceUnavailable:
		msg = "Service temporarily unavailable. Please ensure the AI service is running."
	default:
		msg = orDefault(errResp.Error, "An unexpected error occurred")
	}

	return &domain.GatewayError{
		Code:    code,
		Status:  status,
		Message: msg,
		Err:     fmt.Errorf("gateway error [%d]: %s", status, strings.TrimSpace(string(body))),
	}
}

func codeForStatus(status int) domain.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorCodeInvalidRequest
	case http.StatusNotFound:
		return domain.ErrorCodeNotFound
	case http.StatusTooManyRequests:
		return domain.ErrorCodeRateLimited
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.ErrorCodeServiceUnavailable
	default:
		return domain.ErrorCodeInternalError
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
