// Package bridge implements the dashboard bridge: a relay that exposes a
// restricted read-only view of the local store to an untrusted page. One
// request bus serves several redundant transports; the filtering logic is
// written once and shared by all of them.
package bridge

import (
	"github.com/dmitrijs2005/videonotes/internal/client/models"
)

// Source tags. Inbound messages not addressed with the dashboard tag are
// ignored; every reply carries the extension tag.
const (
	SourceDashboard = "VN_DASHBOARD"
	SourceExtension = "VN_EXTENSION"
)

// Request and response type tags.
const (
	TypePing                = "PING"
	TypePong                = "PONG"
	TypeBridgeReady         = "BRIDGE_READY"
	TypeRequestLocalVideos  = "REQUEST_LOCAL_VIDEOS"
	TypeLocalVideosResponse = "LOCAL_VIDEOS_RESPONSE"
	TypeRequestAllNotes     = "REQUEST_ALL_NOTES"
	TypeAllNotesResponse    = "ALL_NOTES_RESPONSE"
	TypeRequestVideoNotes   = "REQUEST_VIDEO_NOTES"
	TypeVideoNotesResponse  = "VIDEO_NOTES_RESPONSE"
)

// Request is a page-originated message.
type Request struct {
	Source  string `json:"source"`
	Type    string `json:"type"`
	VideoID string `json:"videoId,omitempty"`
}

// Response is a bridge-originated message. Payload shape depends on Type.
type Response struct {
	Source  string `json:"source"`
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	VideoID string `json:"videoId,omitempty"`
}

// LocalVideo is the projection handed to the page: the stored record plus a
// bookmarkTime alias, which is the field name the dashboard reads.
type LocalVideo struct {
	models.VideoListItem
	BookmarkTime *float64 `json:"bookmarkTime,omitempty"`
}
