package models

import "time"

// Handshake is a short-lived one-time code linking a signed-in dashboard
// session to a device. Consumed exactly once; expired rows are swept lazily.
type Handshake struct {
	Code      string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
