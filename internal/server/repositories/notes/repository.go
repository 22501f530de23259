// Package notes declares the server-side repository contract for the cloud
// copies of notes. Rows are keyed by the device-minted note id.
package notes

import (
	"context"

	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

// Repository defines operations over a video's cloud notes.
type Repository interface {
	// Upsert inserts or updates the note keyed by its device-minted id.
	Upsert(ctx context.Context, note *models.Note) error

	// DeleteAbsent removes every note of videoID whose id is not in keep.
	// An empty keep removes all of the video's notes. Returns the number of
	// rows deleted.
	DeleteAbsent(ctx context.Context, videoID string, keep []string) (int64, error)

	// ListByVideo returns a video's notes ordered by timestamp ascending.
	ListByVideo(ctx context.Context, videoID string) ([]models.Note, error)

	// CountByVideo returns the number of notes attached to a video.
	CountByVideo(ctx context.Context, videoID string) (int, error)
}
