package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated volunteer session. Tokens are stored hashed;
// the middleware hashes the presented token before lookup.
type Session struct {
	TokenHash string
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
