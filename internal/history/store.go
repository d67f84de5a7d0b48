// Package history persists a user's chat messages and derives sessions,
// statistics and backups from them.
package history

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/internal/logging"
	"github.com/kisaansahayak/sahayak/internal/repository"
)

// DefaultMaxMessages is the per-user history cap; older messages are evicted first.
const DefaultMaxMessages = 100

// UserProvider supplies the current user.
type UserProvider interface {
	UserID() string
	GetCurrentUser(ctx context.Context) domain.User
}

// Store is the chat history of the current user. Reads and writes go straight
// to the key-value store; nothing is cached, so two stores over the same
// backend see each other's writes (last write wins).
type Store struct {
	kv          repository.Store
	users       UserProvider
	rules       Rules
	maxMessages int
	now         func() time.Time
	newID       func() string
	logger      *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithRules overrides the session rules.
func WithRules(r Rules) Option {
	return func(s *Store) { s.rules = r }
}

// WithMaxMessages overrides the history cap.
func WithMaxMessages(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxMessages = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSessionIDs overrides the derived-session id generator.
func WithSessionIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l) }
}

// NewStore creates a history store.
func NewStore(kv repository.Store, users UserProvider, opts ...Option) *Store {
	s := &Store{
		kv:          kv,
		users:       users,
		rules:       DefaultRules(),
		maxMessages: DefaultMaxMessages,
		now:         time.Now,
		newID:       NewSessionID,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the session rules in use.
func (s *Store) Rules() Rules {
	return s.rules
}

func (s *Store) key() string {
	return repository.ChatKey(s.users.UserID())
}

// Load returns the current user's messages in stored order. Missing or corrupt
// data yields an empty list.
func (s *Store) Load(ctx context.Context) []domain.Message {
	data, found, err := s.kv.Get(ctx, s.key())
	if err != nil {
		s.logger.Warn("error loading chat history", zap.Error(err))
		return []domain.Message{}
	}
	if !found {
		return []domain.Message{}
	}

	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		s.logger.Warn("error loading chat history", zap.Error(err))
		return []domain.Message{}
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages
}

// Save persists the last maxMessages entries of messages. It reports false on
// encoding or storage failure and never returns an error.
func (s *Store) Save(ctx context.Context, messages []domain.Message) bool {
	if len(messages) > s.maxMessages {
		messages = messages[len(messages)-s.maxMessages:]
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	data, err := json.Marshal(messages)
	if err != nil {
		s.logger.Warn("error saving chat history", zap.Error(err))
		return false
	}
	if err := s.kv.Put(ctx, s.key(), data); err != nil {
		s.logger.Warn("error saving chat history", zap.Error(err))
		return false
	}
	return true
}

// AddMessage appends msg to the stored history, stamping the current user id
// and a timestamp when msg has none.
func (s *Store) AddMessage(ctx context.Context, msg domain.Message) bool {
	messages := s.Load(ctx)
	msg.UserID = s.users.UserID()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = domain.Timestamp(s.now())
	}
	if msg.ID == "" {
		msg.ID = domain.NewMessageID()
	}
	return s.Save(ctx, append(messages, msg))
}

// Clear removes the current user's history.
func (s *Store) Clear(ctx context.Context) bool {
	if err := s.kv.Delete(ctx, s.key()); err != nil {
		s.logger.Warn("error clearing chat history", zap.Error(err))
		return false
	}
	return true
}

// Sessions partitions the stored history into sessions, most recent first.
func (s *Store) Sessions(ctx context.Context) []domain.Session {
	return Partition(s.Load(ctx), s.rules, s.newID)
}

// Stats aggregates the stored history.
func (s *Store) Stats(ctx context.Context) domain.Stats {
	messages := s.Load(ctx)
	return statsOf(messages, s.Sessions(ctx))
}

func statsOf(messages []domain.Message, sessions []domain.Session) domain.Stats {
	stats := domain.Stats{
		TotalMessages: len(messages),
		TotalSessions: len(sessions),
	}
	for _, m := range messages {
		if m.IsUser {
			stats.UserMessages++
		} else {
			stats.BotMessages++
		}
	}
	if len(messages) > 0 {
		oldest := messages[0].Timestamp
		newest := messages[len(messages)-1].Timestamp
		stats.OldestMessage = &oldest
		stats.NewestMessage = &newest
	}
	return stats
}
