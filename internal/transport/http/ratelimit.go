package http

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// FixedWindowStore counts requests per client in fixed windows. It implements
// echo's middleware.RateLimiterStore.
type FixedWindowStore struct {
	mu          sync.Mutex
	max         int
	window      time.Duration
	now         func() time.Time
	windows     map[string]*fixedWindow
	lastCleanup time.Time
}

type fixedWindow struct {
	start time.Time
	count int
}

// NewFixedWindowStore allows max requests per client every window.
func NewFixedWindowStore(max int, window time.Duration) *FixedWindowStore {
	return newFixedWindowStore(max, window, time.Now)
}

func newFixedWindowStore(max int, window time.Duration, now func() time.Time) *FixedWindowStore {
	return &FixedWindowStore{
		max:         max,
		window:      window,
		now:         now,
		windows:     make(map[string]*fixedWindow),
		lastCleanup: now(),
	}
}

// Allow records one request for identifier and reports whether it is within the limit.
func (s *FixedWindowStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastCleanup) >= s.window {
		s.cleanup(now)
	}

	w, ok := s.windows[identifier]
	if !ok || now.Sub(w.start) >= s.window {
		w = &fixedWindow{start: now}
		s.windows[identifier] = w
	}
	if w.count >= s.max {
		return false, nil
	}
	w.count++
	return true, nil
}

func (s *FixedWindowStore) cleanup(now time.Time) {
	for id, w := range s.windows {
		if now.Sub(w.start) >= s.window {
			delete(s.windows, id)
		}
	}
	s.lastCleanup = now
}

// fixedWindowScript increments the counter and starts the window on the first hit.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisStore is a FixedWindowStore shared by every gateway instance through Redis.
// It fails open when Redis is unreachable.
type RedisStore struct {
	client  *redis.Client
	max     int
	window  time.Duration
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRedisStore allows max requests per client every window, counted in Redis.
func NewRedisStore(client *redis.Client, max int, window time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:  client,
		max:     max,
		window:  window,
		prefix:  "rate_limit:",
		timeout: time.Second,
		logger:  logger,
	}
}

// Allow records one request for identifier and reports whether it is within the limit.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := fixedWindowScript.Run(ctx, s.client, []string{s.prefix + identifier}, s.window.Milliseconds()).Int64()
	if err != nil {
		s.logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
		return true, nil
	}
	return n <= int64(s.max), nil
}
