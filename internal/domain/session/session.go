package session

import (
	"fmt"
	"time"
)

// Session is an opaque bearer token bound to one profile.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Validate() error {
	if s.Token == "" {
		return fmt.Errorf("session token is required")
	}
	if s.UserID == "" {
		return fmt.Errorf("session user id is required")
	}
	if !s.ExpiresAt.After(s.CreatedAt) {
		return fmt.Errorf("session expiry must be after creation")
	}

	return nil
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
