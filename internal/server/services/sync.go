package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/dbx"
	"github.com/dmitrijs2005/videonotes/internal/logging"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/repomanager"
)

// VideoSnapshot is one video as pushed by a device. Instants are Unix
// milliseconds; playback positions are seconds.
type VideoSnapshot struct {
	YoutubeID     string   `json:"youtubeId"`
	Title         string   `json:"title"`
	ThumbnailURL  string   `json:"thumbnailUrl"`
	BookmarkTime  *float64 `json:"bookmarkTime"`
	LastWatchedAt *int64   `json:"lastWatchedAt"`
}

// NoteSnapshot is one note as pushed by a device. Notes reference videos by
// youtubeId; the cloud row id is resolved server-side.
type NoteSnapshot struct {
	ID        string  `json:"id"`
	YoutubeID string  `json:"youtubeId"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// Snapshot is a device's complete local state.
type Snapshot struct {
	Videos []VideoSnapshot `json:"videos"`
	Notes  []NoteSnapshot  `json:"notes"`
}

// PushResult summarizes one reconciliation run.
type PushResult struct {
	VideosUpserted int `json:"videosUpserted"`
	NotesUpserted  int `json:"notesUpserted"`
	NotesDeleted   int `json:"notesDeleted"`
}

// VideoWithCount is a dashboard listing row: the cloud video plus how many
// notes hang off it.
type VideoWithCount struct {
	models.Video
	NoteCount int
}

// SyncService reconciles pushed snapshots into the cloud copy and serves the
// dashboard's read API.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewSyncService constructs a SyncService.
func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SyncService {
	return &SyncService{db: db, repomanager: m, logger: logger}
}

// Push reconciles a device snapshot into userID's cloud copy.
//
// Videos are upserted first, each in isolation: one malformed video does not
// fail the push. Note reconciliation then runs per video, scoped to the
// videos the snapshot mentions. For each scoped video the pushed notes are
// upserted and any cloud note absent from the push is deleted. Videos the
// snapshot never mentions keep their notes untouched, so a device that has
// seen only part of the library cannot erase the rest.
func (s *SyncService) Push(ctx context.Context, userID string, snap *Snapshot) (*PushResult, error) {
	result := &PushResult{}

	// Videos reference their owner, so a first push from an identity the
	// dashboard has never seen needs a placeholder account. The dashboard
	// enriches it on the next visit.
	placeholder := &models.Profile{
		ID:    userID,
		Email: userID + "@sync.local",
		Name:  "Extension User",
	}
	if err := s.repomanager.Profiles(s.db).EnsureExists(ctx, placeholder); err != nil {
		return nil, fmt.Errorf("error ensuring profile: %v", err)
	}

	videosRepo := s.repomanager.Videos(s.db)
	for _, v := range snap.Videos {
		if v.YoutubeID == "" {
			s.logger.Warn(ctx, "skipping video without youtubeId", "user_id", userID)
			continue
		}
		video := &models.Video{
			UserID:        userID,
			YoutubeID:     v.YoutubeID,
			Title:         v.Title,
			ThumbnailURL:  v.ThumbnailURL,
			BookmarkTime:  v.BookmarkTime,
			LastWatchedAt: millisToTime(v.LastWatchedAt),
		}
		if _, err := videosRepo.Upsert(ctx, video); err != nil {
			s.logger.Error(ctx, "video upsert failed", "user_id", userID, "youtube_id", v.YoutubeID, "error", err)
			continue
		}
		result.VideosUpserted++
	}

	grouped := groupNotes(snap.Notes)

	// Reconciliation scope: the videos the snapshot pushed, or, when it
	// pushed none, the videos its notes mention.
	scope := make([]string, 0, len(snap.Videos))
	if len(snap.Videos) > 0 {
		for _, v := range snap.Videos {
			if v.YoutubeID != "" {
				scope = append(scope, v.YoutubeID)
			}
		}
	} else {
		for youtubeID := range grouped {
			scope = append(scope, youtubeID)
		}
	}

	for _, youtubeID := range scope {
		upserted, deleted, err := s.reconcileVideoNotes(ctx, userID, youtubeID, grouped[youtubeID])
		if err != nil {
			s.logger.Error(ctx, "note reconciliation failed", "user_id", userID, "youtube_id", youtubeID, "error", err)
			continue
		}
		result.NotesUpserted += upserted
		result.NotesDeleted += deleted
	}

	s.logger.Info(ctx, "snapshot reconciled", "user_id", userID,
		"videos", result.VideosUpserted, "notes_upserted", result.NotesUpserted, "notes_deleted", result.NotesDeleted)
	return result, nil
}

// reconcileVideoNotes upserts one video's pushed notes and deletes the cloud
// notes absent from the push, atomically per video.
func (s *SyncService) reconcileVideoNotes(ctx context.Context, userID, youtubeID string, pushed []NoteSnapshot) (int, int, error) {
	video, err := s.repomanager.Videos(s.db).GetByYoutubeID(ctx, userID, youtubeID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// No cloud row to hang notes off; the video upsert failed or the
			// device pushed notes for a video it never pushed.
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("error resolving video: %v", err)
	}

	var upserted int
	var deleted int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		notesRepo := s.repomanager.Notes(tx)

		keep := make([]string, 0, len(pushed))
		for _, n := range pushed {
			if n.ID == "" || n.Text == "" {
				continue
			}
			note := &models.Note{
				ID:        n.ID,
				VideoID:   video.ID,
				Text:      n.Text,
				Timestamp: n.Timestamp,
				CreatedAt: millisToTimeOrNow(n.CreatedAt),
				UpdatedAt: millisToTimeOrNow(n.UpdatedAt),
			}
			if err := notesRepo.Upsert(ctx, note); err != nil {
				return err
			}
			keep = append(keep, n.ID)
			upserted++
		}

		var err error
		deleted, err = notesRepo.DeleteAbsent(ctx, video.ID, keep)
		return err
	})
	if err != nil {
		return 0, 0, err
	}

	return upserted, int(deleted), nil
}

// ListVideos returns a user's cloud videos with note counts, most recently
// watched first.
func (s *SyncService) ListVideos(ctx context.Context, userID string) ([]VideoWithCount, error) {
	videos, err := s.repomanager.Videos(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing videos: %v", err)
	}

	notesRepo := s.repomanager.Notes(s.db)
	result := make([]VideoWithCount, 0, len(videos))
	for _, v := range videos {
		count, err := notesRepo.CountByVideo(ctx, v.ID)
		if err != nil {
			return nil, fmt.Errorf("error counting notes: %v", err)
		}
		result = append(result, VideoWithCount{Video: v, NoteCount: count})
	}
	return result, nil
}

// ListVideoNotes returns the notes of one of the user's videos, ordered by
// timestamp. Unknown videos yield ErrNotFound.
func (s *SyncService) ListVideoNotes(ctx context.Context, userID, youtubeID string) ([]models.Note, error) {
	video, err := s.repomanager.Videos(s.db).GetByYoutubeID(ctx, userID, youtubeID)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).ListByVideo(ctx, video.ID)
}

func groupNotes(notes []NoteSnapshot) map[string][]NoteSnapshot {
	grouped := make(map[string][]NoteSnapshot)
	for _, n := range notes {
		if n.YoutubeID == "" {
			continue
		}
		grouped[n.YoutubeID] = append(grouped[n.YoutubeID], n)
	}
	return grouped
}

func millisToTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms)
	return &t
}

func millisToTimeOrNow(ms int64) time.Time {
	if ms == 0 {
		return time.Now()
	}
	return time.UnixMilli(ms)
}
