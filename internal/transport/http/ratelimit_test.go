package http

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowStore(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newFixedWindowStore(3, time.Minute, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		ok, err := store.Allow("1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := store.Allow("1.2.3.4")
	assert.False(t, ok)

	ok, _ = store.Allow("5.6.7.8")
	assert.True(t, ok)

	now = now.Add(59 * time.Second)
	ok, _ = store.Allow("1.2.3.4")
	assert.False(t, ok)

	now = now.Add(time.Second)
	ok, _ = store.Allow("1.2.3.4")
	assert.True(t, ok)
}

func TestFixedWindowStoreCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newFixedWindowStore(1, time.Minute, func() time.Time { return now })

	_, _ = store.Allow("a")
	_, _ = store.Allow("b")
	assert.Len(t, store.windows, 2)

	now = now.Add(2 * time.Minute)
	_, _ = store.Allow("c")
	assert.Len(t, store.windows, 1)
}

func TestRedisStoreFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewRedisStore(client, 1, time.Minute, nil)
	for i := 0; i < 3; i++ {
		ok, err := store.Allow("1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
