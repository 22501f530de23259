// Package profiles declares the server-side repository contract for cloud
// accounts. Accounts are created by the dashboard's sign-in flow, or as
// placeholders on a device's first push.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

// Repository defines operations over cloud accounts.
type Repository interface {
	// Create stores a new profile and returns it with its generated id.
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)

	// EnsureExists inserts the profile under its given id if no row exists
	// yet; an existing row is left untouched.
	EnsureExists(ctx context.Context, profile *models.Profile) error

	// GetByID looks up a profile by id. Returns common.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Profile, error)

	// GetByEmail looks up a profile by email. Returns common.ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
}
