package models

import "time"

// Video is the cloud copy of one tracked video. Rows are keyed by an opaque
// id; the (UserID, YoutubeID) pair is unique, so a device pushing the same
// video twice updates in place.
type Video struct {
	ID            string
	UserID        string
	YoutubeID     string
	Title         string
	ThumbnailURL  string
	BookmarkTime  *float64
	LastWatchedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
