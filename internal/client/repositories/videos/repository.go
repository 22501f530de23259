// Package videos declares the device-side persistence contract for per-video
// records, plus its SQLite implementation.
package videos

import (
	"context"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
)

// Repository describes CRUD and query operations for local video records.
type Repository interface {
	// Upsert inserts or fully replaces a record keyed by video id.
	Upsert(ctx context.Context, video *models.Video) error

	// Get returns the record for one video, or common.ErrNotFound.
	Get(ctx context.Context, videoID string) (*models.Video, error)

	// GetAll returns every record together with its note count.
	GetAll(ctx context.Context) ([]models.VideoListItem, error)
}
