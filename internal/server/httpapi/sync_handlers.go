package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
	"github.com/dmitrijs2005/videonotes/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type syncCountsResponse struct {
	Videos int `json:"videos"`
	Notes  int `json:"notes"`
}

type syncResponse struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Counts    syncCountsResponse `json:"counts"`
}

// handleSyncPush reconciles a device snapshot. POST /api/sync
func (s *Server) handleSyncPush(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	var snap services.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "malformed snapshot")
		return
	}

	result, err := s.sync.Push(r.Context(), userID, &snap)
	if err != nil {
		s.logger.Error(r.Context(), "push failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "push failed")
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Success:   true,
		Timestamp: time.Now().UnixMilli(),
		Counts:    syncCountsResponse{Videos: result.VideosUpserted, Notes: result.NotesUpserted},
	})
}

type noteCountResponse struct {
	Notes int `json:"notes"`
}

type videoResponse struct {
	ID            string            `json:"id"`
	YoutubeID     string            `json:"youtubeId"`
	Title         string            `json:"title"`
	ThumbnailURL  string            `json:"thumbnailUrl"`
	BookmarkTime  *float64          `json:"bookmarkTime"`
	LastWatchedAt *int64            `json:"lastWatchedAt"`
	Count         noteCountResponse `json:"_count"`
}

type noteResponse struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// handleListVideos serves the dashboard's library view. GET /api/videos
func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	videos, err := s.sync.ListVideos(r.Context(), userID)
	if err != nil {
		s.logger.Error(r.Context(), "listing videos failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	result := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		result = append(result, videoResponse{
			ID:            v.ID,
			YoutubeID:     v.YoutubeID,
			Title:         v.Title,
			ThumbnailURL:  v.ThumbnailURL,
			BookmarkTime:  v.BookmarkTime,
			LastWatchedAt: timeToMillis(v.LastWatchedAt),
			Count:         noteCountResponse{Notes: v.NoteCount},
		})
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListVideoNotes serves one video's notes.
// GET /api/videos/{youtubeID}/notes
func (s *Server) handleListVideoNotes(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	youtubeID := chi.URLParam(r, "youtubeID")

	notes, err := s.sync.ListVideoNotes(r.Context(), userID, youtubeID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown video")
			return
		}
		s.logger.Error(r.Context(), "listing notes failed", "user_id", userID, "youtube_id", youtubeID, "error", err)
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	result := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		result = append(result, toNoteResponse(n))
	}

	writeJSON(w, http.StatusOK, result)
}

func toNoteResponse(n models.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Text:      n.Text,
		Timestamp: n.Timestamp,
		CreatedAt: n.CreatedAt.UnixMilli(),
		UpdatedAt: n.UpdatedAt.UnixMilli(),
	}
}

func timeToMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
