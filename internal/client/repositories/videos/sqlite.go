package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert replaces the whole row for the video id. Callers that want overlay
// semantics (bookmark set) read the record first inside a transaction.
func (r *SQLiteRepository) Upsert(ctx context.Context, v *models.Video) error {
	query := `INSERT INTO videos
			(video_id, bookmark_timestamp, title, channel_name, thumbnail_url, hide_recommendations, last_visited_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(video_id) DO UPDATE SET
				bookmark_timestamp = excluded.bookmark_timestamp,
				title = excluded.title,
				channel_name = excluded.channel_name,
				thumbnail_url = excluded.thumbnail_url,
				hide_recommendations = excluded.hide_recommendations,
				last_visited_at = excluded.last_visited_at
	`
	_, err := r.db.ExecContext(ctx, query,
		v.VideoID, v.BookmarkTimestamp, v.Title, v.ChannelName,
		v.ThumbnailURL, v.HideRecommendations, v.LastVisitedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert video: %w", err)
	}
	return nil
}

// Get returns one video record or common.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, videoID string) (*models.Video, error) {
	query := `SELECT video_id, bookmark_timestamp, title, channel_name, thumbnail_url, hide_recommendations, last_visited_at
			FROM videos WHERE video_id = ?`
	v := &models.Video{}
	var bookmark sql.NullFloat64
	var hideRecs int
	err := r.db.QueryRowContext(ctx, query, videoID).Scan(
		&v.VideoID, &bookmark, &v.Title, &v.ChannelName,
		&v.ThumbnailURL, &hideRecs, &v.LastVisitedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select video: %w", err)
	}
	if bookmark.Valid {
		v.BookmarkTimestamp = &bookmark.Float64
	}
	v.HideRecommendations = hideRecs != 0
	return v, nil
}

// GetAll lists every video with its note count, most recently visited first.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.VideoListItem, error) {
	query := `SELECT v.video_id, v.bookmark_timestamp, v.title, v.channel_name,
				v.thumbnail_url, v.hide_recommendations, v.last_visited_at,
				COUNT(n.id)
			FROM videos v
			LEFT JOIN notes n ON n.video_id = v.video_id
			GROUP BY v.video_id
			ORDER BY v.last_visited_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select videos: %w", err)
	}
	defer rows.Close()

	var result []models.VideoListItem
	for rows.Next() {
		var item models.VideoListItem
		var bookmark sql.NullFloat64
		var hideRecs int
		if err := rows.Scan(&item.VideoID, &bookmark, &item.Title, &item.ChannelName,
			&item.ThumbnailURL, &hideRecs, &item.LastVisitedAt, &item.Count.Notes); err != nil {
			return nil, err
		}
		if bookmark.Valid {
			item.BookmarkTimestamp = &bookmark.Float64
		}
		item.HideRecommendations = hideRecs != 0
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
