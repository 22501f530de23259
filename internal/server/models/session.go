package models

import "time"

// Session is one linked device: a rotating refresh token bound to a user and
// the device's user-agent string. A user keeps at most a handful of sessions
// per user-agent; the oldest are evicted when a new one is minted.
type Session struct {
	ID           string
	UserID       string
	RefreshToken string
	UserAgent    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
