package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisaansahayak/sahayak/config"
	"github.com/kisaansahayak/sahayak/internal/adapter/rag"
	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/internal/service"
	"github.com/kisaansahayak/sahayak/policy"
)

func newTestHandler(t *testing.T, upstreamURL string) *Handler {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy, policy.DefaultMaxMessageLength)
	require.NoError(t, err)
	cfg := &config.Config{PythonAPIURL: upstreamURL, UpstreamTimeout: time.Second}
	return NewHandler(service.New(rag.NewClient(upstreamURL, cfg.UpstreamTimeout), cfg, engine))
}

func postChat(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Chat(e.NewContext(req, rec)))
	return rec
}

func TestChatSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"answer":"Prepare beds with compost."}`)
	}))
	defer upstream.Close()

	rec := postChat(t, newTestHandler(t, upstream.URL),
		`{"message":"Tell me about soil preparation","sessionId":"s1","userId":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Prepare beds with compost.", resp.Message)
	assert.Equal(t, domain.MessageTypeResponse, resp.Type)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, service.ModelName, resp.Model)
}

func TestChatErrors(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	tests := []struct {
		name   string
		body   string
		status int
		code   domain.ErrorCode
	}{
		{"missing message", `{}`, http.StatusBadRequest, domain.ErrorCodeInvalidMessage},
		{"message not a string", `{"message":42}`, http.StatusBadRequest, domain.ErrorCodeInvalidMessage},
		{"too long", `{"message":"` + strings.Repeat("a", 1001) + `"}`, http.StatusBadRequest, domain.ErrorCodeMessageTooLong},
		{"upstream down", `{"message":"hello"}`, http.StatusServiceUnavailable, domain.ErrorCodeServiceUnavailable},
	}

	h := newTestHandler(t, downURL)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, h, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var resp domain.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGetHistoryStub(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, "http://localhost:5000")

	req := httptest.NewRequest(http.MethodGet, "/api/chat/history/s9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues("s9")

	require.NoError(t, h.GetHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SessionID string            `json:"sessionId"`
		Messages  []json.RawMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s9", resp.SessionID)
	assert.NotNil(t, resp.Messages)
	assert.Empty(t, resp.Messages)
}

func TestGetTipsAndHealth(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, "http://localhost:5000")

	rec := httptest.NewRecorder()
	require.NoError(t, h.GetTips(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/tips", nil), rec)))
	var tips domain.TipsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tips))
	assert.Len(t, tips.Tips, 5)

	rec = httptest.NewRecorder()
	require.NoError(t, h.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/health", nil), rec)))
	var health domain.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "KisaanSahayak Backend", health.Service)
	assert.Equal(t, "http://localhost:5000", health.PythonAPI)
}
