package domain

import "time"

// Default identity values for a fresh profile.
const (
	DefaultUserID   = "default-user"
	DefaultUserName = "Farmer"
)

// User is the single local identity of a client profile.
type User struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
	LastActive time.Time `json:"lastActive" yaml:"last_active"`
}
