package notes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
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

// Upsert inserts a note by id. On conflict the mutable columns are updated;
// created_at keeps its original value.
func (r *SQLiteRepository) Upsert(ctx context.Context, n *models.Note) error {
	query := `INSERT INTO notes (id, video_id, timestamp, text, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET timestamp = excluded.timestamp,
				text = excluded.text,
				updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.VideoID, n.Timestamp, n.Text, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

// GetByVideo lists the notes for one video, earliest timestamp first.
func (r *SQLiteRepository) GetByVideo(ctx context.Context, videoID string) ([]models.Note, error) {
	query := `SELECT id, video_id, timestamp, text, created_at, updated_at
			FROM notes WHERE video_id = ? ORDER BY timestamp ASC`
	rows, err := r.db.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// DeleteByID removes a note by id.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// GetAll returns every stored note.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Note, error) {
	query := `SELECT id, video_id, timestamp, text, created_at, updated_at FROM notes`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// CountByVideo counts notes for a video.
func (r *SQLiteRepository) CountByVideo(ctx context.Context, videoID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE video_id = ?`, videoID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

func scanNotes(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.Note, error) {
	var result []models.Note
	for rows.Next() {
		var item models.Note
		if err := rows.Scan(&item.ID, &item.VideoID, &item.Timestamp,
			&item.Text, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
