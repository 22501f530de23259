package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/videonotes/internal/dbx"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, note *models.Note) error {

	query :=
		`INSERT INTO notes (id, video_id, text, timestamp, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (id) DO UPDATE SET
             text = EXCLUDED.text,
             timestamp = EXCLUDED.timestamp,
             updated_at = EXCLUDED.updated_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		note.ID, note.VideoID, note.Text, note.Timestamp, note.CreatedAt, note.UpdatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteAbsent(ctx context.Context, videoID string, keep []string) (int64, error) {

	if len(keep) == 0 {
		res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE video_id = $1`, videoID)
		if err != nil {
			return 0, fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("db error: %w", err)
		}
		return n, nil
	}

	// Placeholders are built per call because the keep set is variable-length.
	placeholders := make([]string, len(keep))
	args := make([]any, 0, len(keep)+1)
	args = append(args, videoID)
	for i, id := range keep {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(
		`DELETE FROM notes WHERE video_id = $1 AND id NOT IN (%s)`,
		strings.Join(placeholders, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByVideo(ctx context.Context, videoID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notes WHERE video_id = $1`, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ListByVideo(ctx context.Context, videoID string) ([]models.Note, error) {
	query :=
		`SELECT id, video_id, text, timestamp, created_at, updated_at
		 FROM notes
		 WHERE video_id = $1
		 ORDER BY timestamp ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.VideoID, &note.Text, &note.Timestamp,
			&note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
