// Package store implements the device's local store: the single owner of
// on-device note and video records. All UI surfaces reach it through the
// background proxy; the store itself only talks to SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
	"github.com/dmitrijs2005/videonotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/videonotes/internal/client/repositories/notes"
	"github.com/dmitrijs2005/videonotes/internal/client/repositories/videos"
	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/dbx"
	"github.com/google/uuid"
)

// nowMillis is a test seam for the wall clock.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// LocalStore owns the device database. A nil or unopened handle yields
// common.ErrStorageUnavailable from every operation instead of a panic.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore wraps an opened SQLite handle.
func NewLocalStore(db *sql.DB) *LocalStore {
	return &LocalStore{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS notes (
  id TEXT PRIMARY KEY,
  video_id TEXT NOT NULL,
  timestamp REAL NOT NULL,
  text TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_video ON notes (video_id, timestamp);

CREATE TABLE IF NOT EXISTS videos (
  video_id TEXT PRIMARY KEY,
  bookmark_timestamp REAL,
  title TEXT NOT NULL DEFAULT '',
  channel_name TEXT NOT NULL DEFAULT '',
  thumbnail_url TEXT NOT NULL DEFAULT '',
  hide_recommendations INTEGER NOT NULL DEFAULT 0,
  last_visited_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`

// InitSchema creates the device tables when missing.
func (s *LocalStore) InitSchema(ctx context.Context) error {
	if s.db == nil {
		return common.ErrStorageUnavailable
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema init error: %w", err)
	}
	return nil
}

// Metadata exposes the key-value repository sharing the same database.
// The sync client keeps its token pair there.
func (s *LocalStore) Metadata() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *LocalStore) ready() error {
	if s.db == nil {
		return common.ErrStorageUnavailable
	}
	return nil
}

// SaveNote validates and upserts a note, then refreshes the owning video's
// last-visited instant. A note without an id gets one here, so the identity
// is fixed on the device even when the save happens offline.
func (s *LocalStore) SaveNote(ctx context.Context, n *models.Note) (*models.Note, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	now := nowMillis()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if n.UpdatedAt < n.CreatedAt {
		n.UpdatedAt = n.CreatedAt
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := notes.NewSQLiteRepository(tx).Upsert(ctx, n); err != nil {
			return err
		}
		return touchVideo(ctx, tx, n.VideoID, now)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// GetNotes returns the notes for one video ordered by timestamp ascending.
func (s *LocalStore) GetNotes(ctx context.Context, videoID string) ([]models.Note, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return notes.NewSQLiteRepository(s.db).GetByVideo(ctx, videoID)
}

// DeleteNote removes a note by id.
func (s *LocalStore) DeleteNote(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return notes.NewSQLiteRepository(s.db).DeleteByID(ctx, id)
}

// GetVideo returns one video record, or common.ErrNotFound.
func (s *LocalStore) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return videos.NewSQLiteRepository(s.db).Get(ctx, videoID)
}

// SaveVideo upserts a video record by its id.
func (s *LocalStore) SaveVideo(ctx context.Context, v *models.Video) error {
	if err := s.ready(); err != nil {
		return err
	}
	if v.LastVisitedAt == 0 {
		v.LastVisitedAt = nowMillis()
	}
	return videos.NewSQLiteRepository(s.db).Upsert(ctx, v)
}

// SetBookmark overlays the bookmark field onto the existing record (or an
// empty one), stamping last_visited_at. The read-modify-write runs in a
// single transaction; races from another device are last-write-wins.
// A nil timestamp clears the bookmark but keeps the record.
func (s *LocalStore) SetBookmark(ctx context.Context, videoID string, timestamp *float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := videos.NewSQLiteRepository(tx)
		v, err := repo.Get(ctx, videoID)
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}
			v = &models.Video{VideoID: videoID}
		}
		v.BookmarkTimestamp = timestamp
		v.LastVisitedAt = nowMillis()
		return repo.Upsert(ctx, v)
	})
}

// ToggleDistraction overlays the hide-recommendations flag the same way
// SetBookmark overlays the bookmark.
func (s *LocalStore) ToggleDistraction(ctx context.Context, videoID string, enabled bool) error {
	if err := s.ready(); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := videos.NewSQLiteRepository(tx)
		v, err := repo.Get(ctx, videoID)
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}
			v = &models.Video{VideoID: videoID}
		}
		v.HideRecommendations = enabled
		v.LastVisitedAt = nowMillis()
		return repo.Upsert(ctx, v)
	})
}

// GetAllNotes returns every note on the device.
func (s *LocalStore) GetAllNotes(ctx context.Context) ([]models.Note, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return notes.NewSQLiteRepository(s.db).GetAll(ctx)
}

// GetAllVideos returns every video with its note count.
func (s *LocalStore) GetAllVideos(ctx context.Context) ([]models.VideoListItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return videos.NewSQLiteRepository(s.db).GetAll(ctx)
}

// touchVideo refreshes last_visited_at for the video, creating a minimal
// record on the first note.
func touchVideo(ctx context.Context, tx dbx.DBTX, videoID string, now int64) error {
	repo := videos.NewSQLiteRepository(tx)
	v, err := repo.Get(ctx, videoID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		v = &models.Video{VideoID: videoID}
	}
	v.LastVisitedAt = now
	return repo.Upsert(ctx, v)
}
