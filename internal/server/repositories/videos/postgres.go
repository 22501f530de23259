package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/dbx"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, video *models.Video) (*models.Video, error) {

	query :=
		`INSERT INTO videos (user_id, youtube_id, title, thumbnail_url, bookmark_time, last_watched_at)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (user_id, youtube_id) DO UPDATE SET
             title = EXCLUDED.title,
             thumbnail_url = EXCLUDED.thumbnail_url,
             bookmark_time = EXCLUDED.bookmark_time,
             last_watched_at = COALESCE(EXCLUDED.last_watched_at, videos.last_watched_at),
             updated_at = now()
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		video.UserID, video.YoutubeID, video.Title, video.ThumbnailURL,
		video.BookmarkTime, video.LastWatchedAt).
		Scan(&video.ID, &video.CreatedAt, &video.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) GetByYoutubeID(ctx context.Context, userID, youtubeID string) (*models.Video, error) {
	query :=
		`SELECT id, user_id, youtube_id, title, thumbnail_url, bookmark_time, last_watched_at, created_at, updated_at
		 FROM videos
		 WHERE user_id = $1 AND youtube_id = $2
		 `

	video := &models.Video{}
	err := r.db.QueryRowContext(ctx, query, userID, youtubeID).Scan(
		&video.ID, &video.UserID, &video.YoutubeID, &video.Title, &video.ThumbnailURL,
		&video.BookmarkTime, &video.LastWatchedAt, &video.CreatedAt, &video.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Video, error) {
	query :=
		`SELECT id, user_id, youtube_id, title, thumbnail_url, bookmark_time, last_watched_at, created_at, updated_at
		 FROM videos
		 WHERE user_id = $1
		 ORDER BY last_watched_at DESC NULLS LAST, updated_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID, &video.UserID, &video.YoutubeID, &video.Title, &video.ThumbnailURL,
			&video.BookmarkTime, &video.LastWatchedAt, &video.CreatedAt, &video.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
