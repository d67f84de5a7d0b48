// Package identity keeps the single local user record of a client profile.
package identity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/internal/logging"
	"github.com/kisaansahayak/sahayak/internal/repository"
)

// Store creates, caches and persists the profile's user record.
type Store struct {
	kv     repository.Store
	now    func() time.Time
	logger *zap.Logger

	mu      sync.Mutex
	current *domain.User
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l) }
}

// NewStore creates an identity store over kv.
func NewStore(kv repository.Store, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCurrentUser loads the persisted user, creating the default user on first
// access, and refreshes its lastActive time. The record is written back on
// every call; write failures are logged and do not fail the call.
func (s *Store) GetCurrentUser(ctx context.Context) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Timestamp(s.now())
	user, ok := s.read(ctx)
	if !ok {
		user = domain.User{
			ID:         domain.DefaultUserID,
			Name:       domain.DefaultUserName,
			CreatedAt:  now,
			LastActive: now,
		}
	} else {
		user.LastActive = now
	}

	s.write(ctx, user)
	s.current = &user
	return user
}

// UserID returns the cached user's id.
func (s *Store) UserID() string {
	return s.cached().ID
}

// UserName returns the cached user's display name.
func (s *Store) UserName() string {
	return s.cached().Name
}

// UpdateUserName renames the cached user and persists the change.
func (s *Store) UpdateUserName(ctx context.Context, name string) domain.User {
	user := s.cached()

	s.mu.Lock()
	defer s.mu.Unlock()
	user.Name = name
	s.write(ctx, user)
	s.current = &user
	return user
}

func (s *Store) cached() domain.User {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur != nil {
		return *cur
	}
	return s.GetCurrentUser(context.Background())
}

func (s *Store) read(ctx context.Context) (domain.User, bool) {
	data, found, err := s.kv.Get(ctx, repository.UserKey)
	if err != nil {
		s.logger.Warn("failed to read user record", zap.Error(err))
		return domain.User{}, false
	}
	if !found {
		return domain.User{}, false
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == "" {
		s.logger.Warn("discarding corrupt user record", zap.Error(err))
		return domain.User{}, false
	}
	return user, true
}

func (s *Store) write(ctx context.Context, user domain.User) {
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("failed to encode user record", zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, repository.UserKey, data); err != nil {
		s.logger.Warn("failed to persist user record", zap.Error(err))
	}
}
