package notes

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE notes (
  id TEXT PRIMARY KEY,
  video_id TEXT NOT NULL,
  timestamp REAL NOT NULL,
  text TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	n := &models.Note{ID: "n1", VideoID: "abc", Timestamp: 5, Text: "hi", CreatedAt: 100, UpdatedAt: 100}
	require.NoError(t, r.Upsert(ctx, n))

	// update by the same id: text/timestamp/updated_at change, created_at stays
	n2 := &models.Note{ID: "n1", VideoID: "abc", Timestamp: 9, Text: "edited", CreatedAt: 999, UpdatedAt: 200}
	require.NoError(t, r.Upsert(ctx, n2))

	got, err := r.GetByVideo(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "edited", got[0].Text)
	assert.Equal(t, 9.0, got[0].Timestamp)
	assert.Equal(t, int64(100), got[0].CreatedAt)
	assert.Equal(t, int64(200), got[0].UpdatedAt)
}

func TestGetByVideo_OrderedByTimestamp(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Note{ID: "a", VideoID: "v", Timestamp: 30, Text: "late"}))
	require.NoError(t, r.Upsert(ctx, &models.Note{ID: "b", VideoID: "v", Timestamp: 10, Text: "early"}))
	require.NoError(t, r.Upsert(ctx, &models.Note{ID: "c", VideoID: "other", Timestamp: 1, Text: "elsewhere"}))

	got, err := r.GetByVideo(ctx, "v")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].Text)
	assert.Equal(t, "late", got[1].Text)
}

func TestDeleteByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Note{ID: "a", VideoID: "v", Timestamp: 1, Text: "x"}))
	require.NoError(t, r.DeleteByID(ctx, "a"))
	require.NoError(t, r.DeleteByID(ctx, "a")) // idempotent

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCountByVideo(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Note{ID: "a", VideoID: "v", Timestamp: 1, Text: "x"}))
	require.NoError(t, r.Upsert(ctx, &models.Note{ID: "b", VideoID: "v", Timestamp: 2, Text: "y"}))

	n, err := r.CountByVideo(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = r.CountByVideo(ctx, "none")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
