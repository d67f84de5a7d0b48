// Package repository provides the key-value persistence used by the chat client.
package repository

import "context"

// Store is a minimal key-value persistence capability. Values are opaque bytes;
// callers own their encoding. Concurrent writers race and the last write wins.
type Store interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}

// Well-known key prefixes.
const (
	UserKey       = "kisaan_user"
	ChatKeyPrefix = "kisaan_chat_"
)

// ChatKey returns the history key for userID.
func ChatKey(userID string) string {
	return ChatKeyPrefix + userID
}
