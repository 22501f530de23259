package models

import "time"

// Note is the cloud copy of one note. The primary key is the device-minted
// note id, which makes the push idempotent: the same note arriving twice is
// one upsert, not two rows.
type Note struct {
	ID        string
	VideoID   string
	Text      string
	Timestamp float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
