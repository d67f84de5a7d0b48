package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

func TestQuerySendsRequest(t *testing.T) {
	var got domain.QueryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"answer":"Plant in spring","type":"advice"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second)
	resp, err := client.Query(context.Background(), &domain.QueryRequest{
		Query:     "When to plant tomatoes?",
		SessionID: "s1",
		UserID:    "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Plant in spring", resp.Answer)
	assert.Equal(t, domain.MessageType("advice"), resp.Type)
	assert.Equal(t, domain.QueryRequest{Query: "When to plant tomatoes?", SessionID: "s1", UserID: "u1"}, got)
}

func TestQueryBadRequestPassesUpstreamText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"query must not be empty"}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Query(context.Background(), &domain.QueryRequest{Query: "x"})
	var gw *domain.GatewayError
	require.ErrorAs(t, err, &gw)
	assert.Equal(t, domain.ErrorCodeInvalidRequest, gw.Code)
	assert.Equal(t, http.StatusBadRequest, gw.Status)
	assert.Equal(t, "query must not be empty", gw.Message)
}

func TestQueryServerErrorIsInternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Query(context.Background(), &domain.QueryRequest{Query: "x"})
	var gw *domain.GatewayError
	require.ErrorAs(t, err, &gw)
	assert.Equal(t, domain.ErrorCodeInternalError, gw.Code)
	assert.Equal(t, http.StatusInternalServerError, gw.Status)
}

func TestQueryConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second).Query(context.Background(), &domain.QueryRequest{Query: "x"})
	var gw *domain.GatewayError
	require.ErrorAs(t, err, &gw)
	assert.Equal(t, domain.ErrorCodeServiceUnavailable, gw.Code)
	assert.Equal(t, http.StatusServiceUnavailable, gw.Status)
}

func TestQueryTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, 50*time.Millisecond).Query(context.Background(), &domain.QueryRequest{Query: "x"})
	var gw *domain.GatewayError
	require.ErrorAs(t, err, &gw)
	assert.Equal(t, domain.ErrorCodeServiceUnavailable, gw.Code)
	assert.Equal(t, http.StatusGatewayTimeout, gw.Status)
}

func TestQueryMalformedAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Query(context.Background(), &domain.QueryRequest{Query: "x"})
	var gw *domain.GatewayError
	require.ErrorAs(t, err, &gw)
	assert.Equal(t, domain.ErrorCodeInternalError, gw.Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   domain.ErrorCode
		status int
	}{
		{"refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), domain.ErrorCodeServiceUnavailable, 503},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), domain.ErrorCodeConnectionError, 503},
		{"dns", &net.DNSError{Err: "no such host", Name: "rag.invalid", IsNotFound: true}, domain.ErrorCodeConnectionError, 503},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), domain.ErrorCodeServiceUnavailable, 504},
		{"bad request", &StatusError{StatusCode: 400}, domain.ErrorCodeInvalidRequest, 400},
		{"other", errors.New("boom"), domain.ErrorCodeInternalError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := Classify(tt.err)
			require.NotNil(t, gw)
			assert.Equal(t, tt.code, gw.Code)
			assert.Equal(t, tt.status, gw.Status)
			assert.ErrorIs(t, gw, tt.err)
		})
	}
	assert.Nil(t, Classify(nil))
}
