// Package sessions declares the server-side repository contract for linked
// devices and their rotating refresh tokens.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

// Repository defines operations over device sessions.
type Repository interface {
	// Create stores a new session with an expiry of now+validity and returns
	// it with its generated id.
	Create(ctx context.Context, userID, refreshToken, userAgent string, validity time.Duration) (*models.Session, error)

	// FindByToken looks up a session by its refresh token.
	// Returns common.ErrNotFound when absent.
	FindByToken(ctx context.Context, refreshToken string) (*models.Session, error)

	// Rotate replaces the session's refresh token and pushes its expiry out to
	// now+validity.
	Rotate(ctx context.Context, id, newToken string, validity time.Duration) error

	// Delete removes a session by id. Missing sessions are not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired sweeps a user's sessions past their expiry.
	DeleteExpired(ctx context.Context, userID string) error

	// EvictOverflow removes a user's oldest sessions for one user-agent,
	// keeping at most keep of the newest.
	EvictOverflow(ctx context.Context, userID, userAgent string, keep int) error
}
