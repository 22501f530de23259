// Package proxy implements the background proxy: the single authority through
// which every UI context mutates the local store. Requests arrive as tagged
// messages, mirroring a serialized message-passing boundary; after a
// successful mutation the proxy schedules a cloud push without blocking the
// caller.
package proxy

import "encoding/json"

// Message type tags. Unknown tags are rejected explicitly.
const (
	TypeDBCall        = "DB_CALL"
	TypeAuthHandshake = "AUTH_HANDSHAKE"
	TypeTriggerSync   = "TRIGGER_SYNC"
	TypeAuthUpdated   = "AUTH_UPDATED"
)

// DB_CALL method names. The set is closed; anything else is an error.
const (
	MethodSaveNote          = "saveNote"
	MethodGetNotes          = "getNotes"
	MethodDeleteNote        = "deleteNote"
	MethodGetVideo          = "getVideo"
	MethodSaveVideo         = "saveVideo"
	MethodSetBookmark       = "setBookmark"
	MethodToggleDistraction = "toggleDistraction"
	MethodGetAllNotes       = "getAllNotes"
	MethodGetAllVideos      = "getAllVideos"
)

// Request is an inbound message. Args is a JSON array of positional
// arguments, decoded per method.
type Request struct {
	Type   string          `json:"type"`
	Method string          `json:"method,omitempty"`
	Args   json.RawMessage `json:"args,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// Response carries either the method result or an error string. Errors cross
// the message boundary as payloads, never as panics.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Broadcast is a notification fanned out to every listening context.
type Broadcast struct {
	Type          string `json:"type"`
	Authenticated bool   `json:"authenticated"`
}

// mutatingMethods lists the DB_CALL methods that schedule a sync push after
// completing successfully.
var mutatingMethods = map[string]bool{
	MethodSaveNote:          true,
	MethodDeleteNote:        true,
	MethodSetBookmark:       true,
	MethodSaveVideo:         true,
	MethodToggleDistraction: true,
}
