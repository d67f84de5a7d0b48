// Package ws serves the chat gateway over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/internal/service"
)

// Config holds connection parameters.
type Config struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	// MaxInFlight caps concurrent chat requests per connection.
	MaxInFlight int
	// AllowedOrigin is checked against the Origin header. Empty allows any origin.
	AllowedOrigin string
}

// DefaultConfig returns the connection parameters used by the gateway.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		PingInterval:   54 * time.Second,
		MaxMessageSize: 64 * 1024,
		MaxInFlight:    4,
	}
}

// Server handles WebSocket connections.
type Server struct {
	cfg      Config
	service  *service.Service
	limiter  middleware.RateLimiterStore
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*connection]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewServer creates a new WebSocket server. Every chat frame is charged to
// the client's address in limiter, the same store the HTTP routes use.
// A nil limiter disables the check.
func NewServer(cfg Config, svc *service.Service, limiter middleware.RateLimiterStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}
	s := &Server{
		cfg:     cfg,
		service: svc,
		limiter: limiter,
		logger:  logger,
		conns:   make(map[*connection]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return cfg.AllowedOrigin == "" || origin == "" || origin == cfg.AllowedOrigin
		},
	}
	return s
}

type connection struct {
	id        string
	clientIP  string
	ws        *websocket.Conn
	send      chan []byte
	inflight  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

func (c *connection) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return nil
	}

	conn := &connection{
		id:       uuid.New().String(),
		clientIP: c.RealIP(),
		ws:       ws,
		send:     make(chan []byte, 16),
		inflight: make(chan struct{}, s.cfg.MaxInFlight),
		done:     make(chan struct{}),
	}
	if !s.register(conn) {
		ws.Close()
		return nil
	}

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	s.logger.Debug("websocket connected", zap.String("conn_id", conn.id))
	return nil
}

// register tracks conn and reserves its reader and writer goroutines.
func (s *Server) register(conn *connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(2)
	return true
}

func (s *Server) unregister(conn *connection) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// Shutdown closes every connection and waits for their goroutines to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	conns := make([]*connection, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		conn.close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readPump reads frames from the connection.
func (s *Server) readPump(conn *connection) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		s.unregister(conn)
		conn.close()
		s.wg.Done()
	}()

	conn.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read failed", zap.String("conn_id", conn.id), zap.Error(err))
			}
			return
		}
		s.handleFrame(ctx, conn, data)
	}
}

// writePump is the only writer on the connection.
func (s *Server) writePump(conn *connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.close()
		s.wg.Done()
	}()

	for {
		select {
		case message := <-conn.send:
			conn.ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("failed to write message", zap.String("conn_id", conn.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-conn.done:
			return
		}
	}
}

// handleFrame dispatches one client frame. Chat frames are answered
// asynchronously so the reader keeps serving pongs.
func (s *Server) handleFrame(ctx context.Context, conn *connection, data []byte) {
	var frame ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.sendError(conn, "", domain.ErrorCodeInvalidRequest, "invalid JSON frame")
		return
	}

	switch frame.Type {
	case TypeChat:
		if !s.allow(conn) {
			s.sendError(conn, frame.RequestID, domain.ErrorCodeRateLimited, domain.RateLimitMessage)
			return
		}
		select {
		case conn.inflight <- struct{}{}:
		default:
			s.sendError(conn, frame.RequestID, domain.ErrorCodeRateLimited, "Too many pending requests on this connection.")
			return
		}
		s.wg.Add(1)
		go func() {
			defer func() {
				<-conn.inflight
				s.wg.Done()
			}()
			s.handleChat(ctx, conn, &frame)
		}()
	default:
		s.sendError(conn, frame.RequestID, domain.ErrorCodeInvalidRequest, "unknown frame type: "+frame.Type)
	}
}

// allow charges one request to the connection's client address.
func (s *Server) allow(conn *connection) bool {
	if s.limiter == nil {
		return true
	}
	allowed, err := s.limiter.Allow(conn.clientIP)
	if err != nil {
		s.logger.Warn("rate limiter failed", zap.String("client_ip", conn.clientIP), zap.Error(err))
		return false
	}
	if !allowed {
		s.logger.Warn("rate limit exceeded", zap.String("client_ip", conn.clientIP), zap.String("conn_id", conn.id))
	}
	return allowed
}

func (s *Server) handleChat(ctx context.Context, conn *connection, frame *ClientFrame) {
	resp, err := s.service.Chat(ctx, &domain.ChatRequest{
		Message:   frame.Message,
		SessionID: frame.SessionID,
		UserID:    frame.UserID,
	})
	if err != nil {
		var gw *domain.GatewayError
		if errors.As(err, &gw) {
			s.sendError(conn, frame.RequestID, gw.Code, gw.Message)
			return
		}
		s.sendError(conn, frame.RequestID, domain.ErrorCodeInternalError, "Internal server error. Please try again later.")
		return
	}

	s.sendJSON(conn, ChatResponseFrame{
		Type:      TypeChatResponse,
		RequestID: frame.RequestID,
		Data:      *resp,
	})
}

func (s *Server) sendError(conn *connection, requestID string, code domain.ErrorCode, message string) {
	s.sendJSON(conn, ErrorFrame{
		Type:      TypeError,
		RequestID: requestID,
		Code:      code,
		Error:     message,
	})
}

func (s *Server) sendJSON(conn *connection, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal frame", zap.Error(err))
		return
	}
	conn.enqueue(data)
}
