package videos

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
	"github.com/dmitrijs2005/videonotes/internal/common"
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
CREATE TABLE videos (
  video_id TEXT PRIMARY KEY,
  bookmark_timestamp REAL,
  title TEXT NOT NULL DEFAULT '',
  channel_name TEXT NOT NULL DEFAULT '',
  thumbnail_url TEXT NOT NULL DEFAULT '',
  hide_recommendations INTEGER NOT NULL DEFAULT 0,
  last_visited_at INTEGER NOT NULL
);
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

func TestUpsertAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := 42.0
	v := &models.Video{
		VideoID:           "abc",
		BookmarkTimestamp: &ts,
		Title:             "T",
		ChannelName:       "C",
		LastVisitedAt:     100,
	}
	require.NoError(t, r.Upsert(ctx, v))

	got, err := r.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got.BookmarkTimestamp)
	assert.Equal(t, 42.0, *got.BookmarkTimestamp)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "C", got.ChannelName)
}

func TestGet_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpsert_NullBookmarkKeepsRecord(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := 10.0
	require.NoError(t, r.Upsert(ctx, &models.Video{VideoID: "abc", BookmarkTimestamp: &ts, Title: "T", LastVisitedAt: 1}))
	require.NoError(t, r.Upsert(ctx, &models.Video{VideoID: "abc", BookmarkTimestamp: nil, Title: "T", LastVisitedAt: 2}))

	got, err := r.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got.BookmarkTimestamp)
	assert.Equal(t, "T", got.Title)
}

func TestGetAll_CountsAndOrder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Video{VideoID: "old", LastVisitedAt: 1}))
	require.NoError(t, r.Upsert(ctx, &models.Video{VideoID: "new", LastVisitedAt: 2}))

	_, err := db.Exec(`INSERT INTO notes (id, video_id, timestamp, text, created_at, updated_at)
		VALUES ('n1', 'old', 1, 'x', 0, 0), ('n2', 'old', 2, 'y', 0, 0)`)
	require.NoError(t, err)

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].VideoID)
	assert.Equal(t, 0, got[0].Count.Notes)
	assert.Equal(t, "old", got[1].VideoID)
	assert.Equal(t, 2, got[1].Count.Notes)
}
