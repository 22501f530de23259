package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncService(t *testing.T) (*SyncService, *fakeManager) {
	t.Helper()
	m := newFakeManager()
	return NewSyncService(testDB(t), m, testLogger()), m
}

func snapshotWith(videos []VideoSnapshot, notes []NoteSnapshot) *Snapshot {
	return &Snapshot{Videos: videos, Notes: notes}
}

func TestPush_UpsertsVideosAndNotes(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t)

	bt := 42.0
	watched := int64(1700000000000)
	snap := snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1", Title: "Talk", ThumbnailURL: "https://t", BookmarkTime: &bt, LastWatchedAt: &watched}},
		[]NoteSnapshot{
			{ID: "n-1", YoutubeID: "yt-1", Text: "first", Timestamp: 1, CreatedAt: 1, UpdatedAt: 1},
			{ID: "n-2", YoutubeID: "yt-1", Text: "second", Timestamp: 9, CreatedAt: 2, UpdatedAt: 2},
		},
	)

	result, err := svc.Push(ctx, "u-1", snap)
	require.NoError(t, err)
	assert.Equal(t, 1, result.VideosUpserted)
	assert.Equal(t, 2, result.NotesUpserted)
	assert.Equal(t, 0, result.NotesDeleted)

	video, err := m.videos.GetByYoutubeID(ctx, "u-1", "yt-1")
	require.NoError(t, err)
	require.NotNil(t, video.BookmarkTime)
	assert.Equal(t, 42.0, *video.BookmarkTime)

	notes, err := m.notes.ListByVideo(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Text)
}

func TestPush_CreatesPlaceholderProfile(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t)

	_, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}}, nil))
	require.NoError(t, err)

	profile, err := m.profiles.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1@sync.local", profile.Email)
	assert.Equal(t, "Extension User", profile.Name)

	// a later push leaves an existing profile alone
	m.profiles.rows["u-1"].Email = "real@example.com"
	_, err = svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-2"}}, nil))
	require.NoError(t, err)

	profile, err = m.profiles.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "real@example.com", profile.Email)
}

func TestPush_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t)

	snap := snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1", Title: "Talk"}},
		[]NoteSnapshot{{ID: "n-1", YoutubeID: "yt-1", Text: "note", Timestamp: 1}},
	)

	_, err := svc.Push(ctx, "u-1", snap)
	require.NoError(t, err)
	result, err := svc.Push(ctx, "u-1", snap)
	require.NoError(t, err)

	assert.Equal(t, 0, result.NotesDeleted)

	video, err := m.videos.GetByYoutubeID(ctx, "u-1", "yt-1")
	require.NoError(t, err)
	notes, err := m.notes.ListByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestPush_DeletesAbsentNotes(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t)

	_, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}},
		[]NoteSnapshot{
			{ID: "n-1", YoutubeID: "yt-1", Text: "keep", Timestamp: 1},
			{ID: "n-2", YoutubeID: "yt-1", Text: "deleted on device", Timestamp: 2},
		},
	))
	require.NoError(t, err)

	// second push no longer carries n-2
	result, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}},
		[]NoteSnapshot{{ID: "n-1", YoutubeID: "yt-1", Text: "keep", Timestamp: 1}},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotesDeleted)

	video, err := m.videos.GetByYoutubeID(ctx, "u-1", "yt-1")
	require.NoError(t, err)
	notes, err := m.notes.ListByVideo(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n-1", notes[0].ID)
}

func TestPush_ScopeSparesUnmentionedVideos(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t)

	_, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}, {YoutubeID: "yt-2"}},
		[]NoteSnapshot{
			{ID: "n-1", YoutubeID: "yt-1", Text: "a", Timestamp: 1},
			{ID: "n-2", YoutubeID: "yt-2", Text: "b", Timestamp: 2},
		},
	))
	require.NoError(t, err)

	// A later push mentions only yt-1 and carries no notes for it. yt-2 and
	// its note stay untouched; yt-1's note goes away.
	result, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}},
		nil,
	))
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotesDeleted)

	v2, err := m.videos.GetByYoutubeID(ctx, "u-1", "yt-2")
	require.NoError(t, err)
	notes, err := m.notes.ListByVideo(ctx, v2.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1, "unmentioned video keeps its notes")
}

func TestPush_EmptySnapshotDeletesNothing(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t)

	_, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}},
		[]NoteSnapshot{{ID: "n-1", YoutubeID: "yt-1", Text: "a", Timestamp: 1}},
	))
	require.NoError(t, err)

	result, err := svc.Push(ctx, "u-1", snapshotWith(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, result.NotesDeleted)

	video, err := m.videos.GetByYoutubeID(ctx, "u-1", "yt-1")
	require.NoError(t, err)
	notes, err := m.notes.ListByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestPush_NotesOnlySnapshotScopesByNoteKeys(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t)

	_, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}},
		[]NoteSnapshot{
			{ID: "n-1", YoutubeID: "yt-1", Text: "a", Timestamp: 1},
			{ID: "n-2", YoutubeID: "yt-1", Text: "b", Timestamp: 2},
		},
	))
	require.NoError(t, err)

	// no videos pushed: the note list alone drives reconciliation
	result, err := svc.Push(ctx, "u-1", snapshotWith(
		nil,
		[]NoteSnapshot{{ID: "n-1", YoutubeID: "yt-1", Text: "a", Timestamp: 1}},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotesDeleted)

	video, err := m.videos.GetByYoutubeID(ctx, "u-1", "yt-1")
	require.NoError(t, err)
	notes, err := m.notes.ListByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestPush_NotesForUnknownVideoSkipped(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncService(t)

	result, err := svc.Push(ctx, "u-1", snapshotWith(
		nil,
		[]NoteSnapshot{{ID: "n-1", YoutubeID: "never-pushed", Text: "a", Timestamp: 1}},
	))
	require.NoError(t, err)
	assert.Equal(t, 0, result.NotesUpserted)
	assert.Equal(t, 0, result.NotesDeleted)
}

func TestPush_LastWatchedAtPreservedWhenAbsent(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t)

	watched := int64(1700000000000)
	_, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1", LastWatchedAt: &watched}}, nil))
	require.NoError(t, err)

	// update without lastWatchedAt keeps the stored value
	_, err = svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1", Title: "renamed"}}, nil))
	require.NoError(t, err)

	video, err := m.videos.GetByYoutubeID(ctx, "u-1", "yt-1")
	require.NoError(t, err)
	require.NotNil(t, video.LastWatchedAt)
	assert.Equal(t, watched, video.LastWatchedAt.UnixMilli())
	assert.Equal(t, "renamed", video.Title)
}

func TestListVideos_WithCounts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncService(t)

	_, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}, {YoutubeID: "yt-2"}},
		[]NoteSnapshot{
			{ID: "n-1", YoutubeID: "yt-1", Text: "a", Timestamp: 1},
			{ID: "n-2", YoutubeID: "yt-1", Text: "b", Timestamp: 2},
		},
	))
	require.NoError(t, err)

	listed, err := svc.ListVideos(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)

	counts := map[string]int{}
	for _, v := range listed {
		counts[v.YoutubeID] = v.NoteCount
	}
	assert.Equal(t, 2, counts["yt-1"])
	assert.Equal(t, 0, counts["yt-2"])
}

func TestListVideoNotes_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncService(t)

	_, err := svc.Push(ctx, "u-1", snapshotWith(
		[]VideoSnapshot{{YoutubeID: "yt-1"}},
		[]NoteSnapshot{{ID: "n-1", YoutubeID: "yt-1", Text: "a", Timestamp: 1}},
	))
	require.NoError(t, err)

	notes, err := svc.ListVideoNotes(ctx, "u-1", "yt-1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	// another user sees nothing
	_, err = svc.ListVideoNotes(ctx, "u-2", "yt-1")
	require.Error(t, err)
}
