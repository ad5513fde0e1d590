package domain

import "time"

// Session is an anonymous browser session. The token scopes all cart data.
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
