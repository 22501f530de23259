// Package handshakes declares the server-side repository contract for the
// one-time device-linking codes.
package handshakes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

// Repository defines operations over handshake codes.
type Repository interface {
	// Create stores a new code for userID with an expiry of now+validity.
	Create(ctx context.Context, code string, userID string, validity time.Duration) error

	// Consume atomically removes the code and returns it. A second Consume of
	// the same code returns common.ErrNotFound; the caller decides whether the
	// returned row had already expired.
	Consume(ctx context.Context, code string) (*models.Handshake, error)

	// DeleteStale sweeps codes past their expiry along with any earlier codes
	// issued to userID, so issuing a new code invalidates the previous one.
	DeleteStale(ctx context.Context, userID string) error
}
