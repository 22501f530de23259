// Package videos declares the server-side repository contract for the cloud
// copies of tracked videos.
package videos

import (
	"context"

	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

// Repository defines operations over a user's cloud video rows.
type Repository interface {
	// Upsert inserts or updates the row keyed by (UserID, YoutubeID) and
	// returns it with its id populated. A nil LastWatchedAt leaves the stored
	// value untouched.
	Upsert(ctx context.Context, video *models.Video) (*models.Video, error)

	// GetByYoutubeID resolves a user's row for one video.
	// Returns common.ErrNotFound when absent.
	GetByYoutubeID(ctx context.Context, userID, youtubeID string) (*models.Video, error)

	// ListByUser returns all of a user's videos, most recently watched first.
	ListByUser(ctx context.Context, userID string) ([]models.Video, error)
}
