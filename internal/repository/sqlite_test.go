package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, UserKey, []byte(`{"id":"u1"}`)))
	got, found, err := store.Get(ctx, UserKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"id":"u1"}`, string(got))

	require.NoError(t, store.Put(ctx, UserKey, []byte(`{"id":"u2"}`)))
	got, _, err = store.Get(ctx, UserKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u2"}`, string(got))

	require.NoError(t, store.Delete(ctx, UserKey))
	_, found, err = store.Get(ctx, UserKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Delete(ctx, UserKey))
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kisaan.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, ChatKey("u1"), []byte("[]")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Get(ctx, "kisaan_chat_u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "[]", string(got))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'z'

	got, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, _ = store.Get(ctx, "k")
	assert.False(t, found)
}
