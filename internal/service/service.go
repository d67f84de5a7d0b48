package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/config"
	"github.com/kisaansahayak/sahayak/internal/adapter/rag"
	"github.com/kisaansahayak/sahayak/policy"
)

// Service implements the proxy gateway operations shared by every transport.
type Service struct {
	ragClient    *rag.Client
	config       *config.Config
	policyEngine *policy.Engine
	logger       *zap.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(ragClient *rag.Client, cfg *config.Config, policyEngine *policy.Engine, opts ...Option) *Service {
	s := &Service{
		ragClient:    ragClient,
		config:       cfg,
		policyEngine: policyEngine,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
