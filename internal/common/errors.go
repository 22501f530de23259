// Package common defines shared constants and sentinel errors used across
// the device (extension) and server layers of VideoNotes. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Device-local storage errors. Returned instead of panicking into callers
	// when the underlying engine was never initialized.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors for note records.
	ErrMissingVideoID  = errors.New("note has no video id")
	ErrEmptyNoteText   = errors.New("note text is empty")
	ErrNoteTextTooLong = errors.New("note text exceeds maximum length")
	ErrBadTimestamp    = errors.New("timestamp must be non-negative")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token and handshake lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrHandshakeConsumed   = errors.New("handshake code invalid or already used")
	ErrHandshakeExpired    = errors.New("handshake code expired")
	ErrNotAuthenticated    = errors.New("not authenticated")
)
