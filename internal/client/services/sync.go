package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/logging"
)

// Fallbacks applied to the wire payload when the local record never captured
// page metadata.
const (
	defaultVideoTitle   = "YouTube Video"
	thumbnailURLPattern = "https://i.ytimg.com/vi/%s/mqdefault.jpg"
)

// snapshotSource yields the device's complete local state for a push.
type snapshotSource interface {
	GetAllVideos(ctx context.Context) ([]models.VideoListItem, error)
	GetAllNotes(ctx context.Context) ([]models.Note, error)
}

// tokenProvider supplies the stored pair and rotates it on demand.
type tokenProvider interface {
	GetTokens(ctx context.Context) (*Tokens, error)
	Refresh(ctx context.Context) (*Tokens, error)
}

// SyncClient pushes the full local snapshot to the cloud. The server owns
// reconciliation; the device only ships state.
type SyncClient struct {
	store   snapshotSource
	auth    tokenProvider
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

// NewSyncClient constructs a SyncClient against the given server base URL.
func NewSyncClient(store snapshotSource, auth tokenProvider, baseURL string, logger logging.Logger) *SyncClient {
	return &SyncClient{
		store:   store,
		auth:    auth,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type videoPayload struct {
	YoutubeID     string   `json:"youtubeId"`
	Title         string   `json:"title"`
	ThumbnailURL  string   `json:"thumbnailUrl"`
	BookmarkTime  *float64 `json:"bookmarkTime,omitempty"`
	LastWatchedAt *int64   `json:"lastWatchedAt,omitempty"`
}

type notePayload struct {
	ID        string  `json:"id"`
	YoutubeID string  `json:"youtubeId"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
	CreatedAt int64   `json:"createdAt,omitempty"`
	UpdatedAt int64   `json:"updatedAt,omitempty"`
}

type syncPayload struct {
	Videos []videoPayload `json:"videos"`
	Notes  []notePayload  `json:"notes"`
}

// PushToCloud ships the full local snapshot. Without a stored token pair it
// fails fast, no network involved. On a 401 it refreshes the pair once and
// retries once; a second rejection is surfaced to the caller.
func (s *SyncClient) PushToCloud(ctx context.Context) error {
	tokens, err := s.auth.GetTokens(ctx)
	if err != nil {
		return err
	}
	if tokens == nil {
		s.logger.Debug(ctx, "sync skipped: device not linked")
		return common.ErrNotAuthenticated
	}

	payload, err := s.snapshot(ctx)
	if err != nil {
		return err
	}

	status, err := s.push(ctx, payload, tokens.AccessToken)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		rotated, err := s.auth.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("token refresh failed: %w", err)
		}
		status, err = s.push(ctx, payload, rotated.AccessToken)
		if err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		return fmt.Errorf("sync push rejected with status %d", status)
	}

	s.logger.Info(ctx, "sync push completed", "videos", len(payload.Videos), "notes", len(payload.Notes))
	return nil
}

// snapshot assembles the wire payload from the local store.
func (s *SyncClient) snapshot(ctx context.Context) (*syncPayload, error) {
	videos, err := s.store.GetAllVideos(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.GetAllNotes(ctx)
	if err != nil {
		return nil, err
	}

	payload := &syncPayload{
		Videos: make([]videoPayload, 0, len(videos)),
		Notes:  make([]notePayload, 0, len(notes)),
	}

	for _, v := range videos {
		wire := videoPayload{
			YoutubeID:    v.VideoID,
			Title:        v.Title,
			ThumbnailURL: v.ThumbnailURL,
			BookmarkTime: v.BookmarkTimestamp,
		}
		if wire.Title == "" {
			wire.Title = defaultVideoTitle
		}
		if wire.ThumbnailURL == "" {
			wire.ThumbnailURL = fmt.Sprintf(thumbnailURLPattern, v.VideoID)
		}
		if v.LastVisitedAt != 0 {
			at := v.LastVisitedAt
			wire.LastWatchedAt = &at
		}
		payload.Videos = append(payload.Videos, wire)
	}

	for _, n := range notes {
		payload.Notes = append(payload.Notes, notePayload{
			ID:        n.ID,
			YoutubeID: n.VideoID,
			Text:      n.Text,
			Timestamp: n.Timestamp,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		})
	}

	return payload, nil
}

// push performs one POST and returns the status code. Transport failures are
// returned as errors; HTTP-level rejections are the caller's to interpret.
func (s *SyncClient) push(ctx context.Context, payload *syncPayload, accessToken string) (int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/sync", bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
