package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/internal/adapter/rag"
	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/policy"
)

const (
	// ModelName is reported in every chat response.
	ModelName = "KisaanSahayak"
	// DefaultSessionID is used when the client sends no session id.
	DefaultSessionID = "default"
)

// Chat validates a chat request, forwards it to the RAG service and shapes the answer.
// Errors are always *domain.GatewayError.
func (s *Service) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := s.admit(ctx, req); err != nil {
		return nil, err
	}

	user := req.UserID
	if user == "" {
		user = "anonymous"
	}
	s.logger.Info("forwarding message",
		zap.String("user_id", user),
		zap.String("session_id", req.SessionID),
		zap.String("preview", preview(req.Message, 50)),
	)

	resp, err := s.ragClient.Query(ctx, &domain.QueryRequest{
		Query:     strings.TrimSpace(req.Message),
		SessionID: req.SessionID,
		UserID:    req.UserID,
	})
	if err != nil {
		gw := rag.Classify(err)
		s.logger.Error("chat upstream failed",
			zap.String("code", string(gw.Code)),
			zap.Int("status", gw.Status),
			zap.Error(err),
		)
		return nil, gw
	}

	msgType := resp.Type
	if msgType == "" {
		msgType = domain.MessageTypeResponse
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	return &domain.ChatResponse{
		Message:   resp.Answer,
		Type:      msgType,
		SessionID: sessionID,
		Timestamp: s.timestamp(),
		Model:     ModelName,
	}, nil
}

func (s *Service) admit(ctx context.Context, req *domain.ChatRequest) error {
	decision, err := s.policyEngine.Evaluate(ctx, req.Message, req.SessionID, req.UserID)
	if err != nil {
		return domain.NewGatewayError(domain.ErrorCodeInternalError,
			"Internal server error. Please try again later.", err)
	}

	switch decision {
	case policy.DecisionAllow:
		return nil
	case policy.DecisionInvalidMessage:
		return domain.NewGatewayError(domain.ErrorCodeInvalidMessage,
			"Message is required and must be a non-empty string", nil)
	case policy.DecisionTooLong:
		return domain.NewGatewayError(domain.ErrorCodeMessageTooLong,
			"Message too long. Please keep it under 1000 characters.", nil)
	default:
		return domain.NewGatewayError(domain.ErrorCodeInvalidRequest, "Request rejected: "+decision, nil)
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
