// Package models defines the on-device record shapes: timestamped notes and
// per-video metadata. Instants are Unix milliseconds, matching the wire format
// the sync endpoint expects.
package models

import (
	"strings"

	"github.com/dmitrijs2005/videonotes/internal/common"
)

// MaxNoteTextLen bounds the length of a note body, in runes.
const MaxNoteTextLen = 5000

// Note is a timestamped annotation attached to exactly one video. The ID is
// generated on the device at creation time so a note created offline keeps a
// stable identity through later sync cycles.
type Note struct {
	ID        string  `json:"id"`
	VideoID   string  `json:"videoId"`
	Timestamp float64 `json:"timestamp"` // seconds into the video
	Text      string  `json:"text"`
	CreatedAt int64   `json:"createdAt"` // unix ms
	UpdatedAt int64   `json:"updatedAt"` // unix ms
}

// Validate checks the invariants a note must satisfy before it is stored.
func (n *Note) Validate() error {
	if n.VideoID == "" {
		return common.ErrMissingVideoID
	}
	if n.Timestamp < 0 {
		return common.ErrBadTimestamp
	}
	trimmed := strings.TrimSpace(n.Text)
	if trimmed == "" {
		return common.ErrEmptyNoteText
	}
	if len([]rune(n.Text)) > MaxNoteTextLen {
		return common.ErrNoteTextTooLong
	}
	return nil
}

// Video is the per-video local record. It is created on the first note or
// bookmark and updated on every interaction; it is never deleted
// automatically. Clearing a bookmark sets BookmarkTimestamp to nil, the
// record itself stays.
type Video struct {
	VideoID             string   `json:"videoId"`
	BookmarkTimestamp   *float64 `json:"bookmarkTimestamp,omitempty"` // seconds
	Title               string   `json:"title,omitempty"`
	ChannelName         string   `json:"channelName,omitempty"`
	ThumbnailURL        string   `json:"thumbnailUrl,omitempty"`
	HideRecommendations bool     `json:"hideRecommendations,omitempty"`
	LastVisitedAt       int64    `json:"lastVisitedAt"` // unix ms
}

// HasBookmark reports whether a bookmark is currently set.
func (v *Video) HasBookmark() bool {
	return v.BookmarkTimestamp != nil
}

// NoteCount carries a note tally alongside a video in listings.
type NoteCount struct {
	Notes int `json:"notes"`
}

// VideoListItem is the shape returned by GetAllVideos: the video record plus
// its note count, which the dashboard bridge uses for its content filter.
type VideoListItem struct {
	Video
	Count NoteCount `json:"_count"`
}
