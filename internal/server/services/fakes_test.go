package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/dbx"
	"github.com/dmitrijs2005/videonotes/internal/logging"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/handshakes"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/videos"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// The fakes below keep state in memory and ignore the DBTX they are handed;
// an empty sqlite database provides the transaction plumbing WithTx needs.

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeVideos struct {
	rows  map[string]*models.Video // userID + "/" + youtubeID
	idSeq int
}

func newFakeVideos() *fakeVideos { return &fakeVideos{rows: map[string]*models.Video{}} }

func (f *fakeVideos) key(userID, youtubeID string) string { return userID + "/" + youtubeID }

func (f *fakeVideos) Upsert(ctx context.Context, video *models.Video) (*models.Video, error) {
	existing, ok := f.rows[f.key(video.UserID, video.YoutubeID)]
	if ok {
		existing.Title = video.Title
		existing.ThumbnailURL = video.ThumbnailURL
		existing.BookmarkTime = video.BookmarkTime
		if video.LastWatchedAt != nil {
			existing.LastWatchedAt = video.LastWatchedAt
		}
		existing.UpdatedAt = time.Now()
		*video = *existing
		return video, nil
	}
	f.idSeq++
	video.ID = fmt.Sprintf("v-%d", f.idSeq)
	video.CreatedAt = time.Now()
	video.UpdatedAt = video.CreatedAt
	copied := *video
	f.rows[f.key(video.UserID, video.YoutubeID)] = &copied
	return video, nil
}

func (f *fakeVideos) GetByYoutubeID(ctx context.Context, userID, youtubeID string) (*models.Video, error) {
	v, ok := f.rows[f.key(userID, youtubeID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVideos) ListByUser(ctx context.Context, userID string) ([]models.Video, error) {
	var result []models.Video
	for _, v := range f.rows {
		if v.UserID == userID {
			result = append(result, *v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ videos.Repository = (*fakeVideos)(nil)

type fakeNotes struct {
	rows map[string]*models.Note
}

func newFakeNotes() *fakeNotes { return &fakeNotes{rows: map[string]*models.Note{}} }

func (f *fakeNotes) Upsert(ctx context.Context, note *models.Note) error {
	copied := *note
	f.rows[note.ID] = &copied
	return nil
}

func (f *fakeNotes) DeleteAbsent(ctx context.Context, videoID string, keep []string) (int64, error) {
	keepSet := map[string]bool{}
	for _, id := range keep {
		keepSet[id] = true
	}
	var deleted int64
	for id, n := range f.rows {
		if n.VideoID == videoID && !keepSet[id] {
			delete(f.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeNotes) ListByVideo(ctx context.Context, videoID string) ([]models.Note, error) {
	var result []models.Note
	for _, n := range f.rows {
		if n.VideoID == videoID {
			result = append(result, *n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp < result[j].Timestamp })
	return result, nil
}

func (f *fakeNotes) CountByVideo(ctx context.Context, videoID string) (int, error) {
	count := 0
	for _, n := range f.rows {
		if n.VideoID == videoID {
			count++
		}
	}
	return count, nil
}

var _ notes.Repository = (*fakeNotes)(nil)

type fakeHandshakes struct {
	rows map[string]*models.Handshake
}

func newFakeHandshakes() *fakeHandshakes {
	return &fakeHandshakes{rows: map[string]*models.Handshake{}}
}

func (f *fakeHandshakes) Create(ctx context.Context, code string, userID string, validity time.Duration) error {
	f.rows[code] = &models.Handshake{Code: code, UserID: userID, ExpiresAt: time.Now().Add(validity), CreatedAt: time.Now()}
	return nil
}

func (f *fakeHandshakes) Consume(ctx context.Context, code string) (*models.Handshake, error) {
	h, ok := f.rows[code]
	if !ok {
		return nil, common.ErrNotFound
	}
	delete(f.rows, code)
	return h, nil
}

func (f *fakeHandshakes) DeleteStale(ctx context.Context, userID string) error {
	for code, h := range f.rows {
		if h.ExpiresAt.Before(time.Now()) || h.UserID == userID {
			delete(f.rows, code)
		}
	}
	return nil
}

var _ handshakes.Repository = (*fakeHandshakes)(nil)

type fakeSessions struct {
	rows  map[string]*models.Session // by refresh token
	seq   int
	order map[string]int // session id -> creation order
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: map[string]*models.Session{}, order: map[string]int{}}
}

func (f *fakeSessions) Create(ctx context.Context, userID, refreshToken, userAgent string, validity time.Duration) (*models.Session, error) {
	f.seq++
	s := &models.Session{
		ID:           fmt.Sprintf("s-%d", f.seq),
		UserID:       userID,
		RefreshToken: refreshToken,
		UserAgent:    userAgent,
		ExpiresAt:    time.Now().Add(validity),
		CreatedAt:    time.Now(),
	}
	f.rows[refreshToken] = s
	f.order[s.ID] = f.seq
	return s, nil
}

func (f *fakeSessions) FindByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	s, ok := f.rows[refreshToken]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, id, newToken string, validity time.Duration) error {
	for token, s := range f.rows {
		if s.ID == id {
			delete(f.rows, token)
			s.RefreshToken = newToken
			s.ExpiresAt = time.Now().Add(validity)
			f.rows[newToken] = s
			return nil
		}
	}
	return nil
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	for token, s := range f.rows {
		if s.ID == id {
			delete(f.rows, token)
		}
	}
	return nil
}

func (f *fakeSessions) DeleteExpired(ctx context.Context, userID string) error {
	for token, s := range f.rows {
		if s.UserID == userID && s.ExpiresAt.Before(time.Now()) {
			delete(f.rows, token)
		}
	}
	return nil
}

func (f *fakeSessions) EvictOverflow(ctx context.Context, userID, userAgent string, keep int) error {
	var matching []*models.Session
	for _, s := range f.rows {
		if s.UserID == userID && s.UserAgent == userAgent {
			matching = append(matching, s)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return f.order[matching[i].ID] > f.order[matching[j].ID] })
	for i := keep; i < len(matching); i++ {
		delete(f.rows, matching[i].RefreshToken)
	}
	return nil
}

var _ sessions.Repository = (*fakeSessions)(nil)

type fakeProfiles struct {
	rows map[string]*models.Profile
}

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{rows: map[string]*models.Profile{}} }

func (f *fakeProfiles) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	profile.ID = fmt.Sprintf("u-%d", len(f.rows)+1)
	profile.CreatedAt = time.Now()
	copied := *profile
	f.rows[profile.ID] = &copied
	return profile, nil
}

func (f *fakeProfiles) EnsureExists(ctx context.Context, profile *models.Profile) error {
	if _, ok := f.rows[profile.ID]; ok {
		return nil
	}
	profile.CreatedAt = time.Now()
	copied := *profile
	f.rows[profile.ID] = &copied
	return nil
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfiles) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range f.rows {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

var _ profiles.Repository = (*fakeProfiles)(nil)

type fakeManager struct {
	profiles   *fakeProfiles
	videos     *fakeVideos
	notes      *fakeNotes
	handshakes *fakeHandshakes
	sessions   *fakeSessions
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		profiles:   newFakeProfiles(),
		videos:     newFakeVideos(),
		notes:      newFakeNotes(),
		handshakes: newFakeHandshakes(),
		sessions:   newFakeSessions(),
	}
}

func (m *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeManager) Profiles(db dbx.DBTX) profiles.Repository            { return m.profiles }
func (m *fakeManager) Videos(db dbx.DBTX) videos.Repository                { return m.videos }
func (m *fakeManager) Notes(db dbx.DBTX) notes.Repository                  { return m.notes }
func (m *fakeManager) Handshakes(db dbx.DBTX) handshakes.Repository        { return m.handshakes }
func (m *fakeManager) Sessions(db dbx.DBTX) sessions.Repository            { return m.sessions }
