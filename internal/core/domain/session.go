package domain

import (
	"errors"
	"time"
)

var (
	// ErrActiveSession is returned when a login is attempted while another
	// session for the same user has not expired yet.
	ErrActiveSession  = errors.New("a session is already active for this user")
	ErrInvalidSession = errors.New("session is no longer valid")
)

// Session is the single live login a user may hold.
type Session struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
