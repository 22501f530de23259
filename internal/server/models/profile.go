package models

import "time"

// Profile is a cloud account. Accounts are created by the web dashboard's
// own sign-in flow; the sync server only ever reads them.
type Profile struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}
