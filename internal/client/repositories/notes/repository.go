// Package notes declares the device-side persistence contract for note
// records, plus its SQLite implementation.
package notes

import (
	"context"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
)

// Repository describes CRUD and query operations for notes in the local store.
type Repository interface {
	// Upsert inserts a note or, if a note with the same id exists, replaces
	// its text, timestamp, and updatedAt.
	Upsert(ctx context.Context, note *models.Note) error

	// GetByVideo returns the notes for one video ordered by timestamp ascending.
	GetByVideo(ctx context.Context, videoID string) ([]models.Note, error)

	// DeleteByID removes a note. Deleting a non-existent id is not an error.
	DeleteByID(ctx context.Context, id string) error

	// GetAll returns every note on the device (the sync snapshot).
	GetAll(ctx context.Context) ([]models.Note, error)

	// CountByVideo returns the number of notes attached to a video.
	CountByVideo(ctx context.Context, videoID string) (int, error)
}
