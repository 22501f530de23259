// Package httpapi exposes the sync server over HTTP JSON: the device-linking
// handshake, token exchange and refresh, the snapshot push, and the
// dashboard's read API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/videonotes/internal/logging"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
	"github.com/dmitrijs2005/videonotes/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// AuthProvider is the slice of AuthService the HTTP layer needs.
type AuthProvider interface {
	IssueHandshake(ctx context.Context, userID string) (string, error)
	Exchange(ctx context.Context, code, userAgent string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UserIDFromAccessToken(tokenString string) (string, error)
}

// SyncProvider is the slice of SyncService the HTTP layer needs.
type SyncProvider interface {
	Push(ctx context.Context, userID string, snap *services.Snapshot) (*services.PushResult, error)
	ListVideos(ctx context.Context, userID string) ([]services.VideoWithCount, error)
	ListVideoNotes(ctx context.Context, userID, youtubeID string) ([]models.Note, error)
}

// Server wires the services into a chi router.
type Server struct {
	auth            AuthProvider
	sync            SyncProvider
	logger          logging.Logger
	dashboardOrigin string
}

// NewServer constructs the HTTP layer over the given services.
func NewServer(auth AuthProvider, sync SyncProvider, logger logging.Logger, dashboardOrigin string) *Server {
	return &Server{auth: auth, sync: sync, logger: logger, dashboardOrigin: dashboardOrigin}
}

// Router builds the route tree. CORS is restricted to the dashboard origin;
// devices are not subject to CORS.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.dashboardOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// handshake needs the dashboard session; exchange and refresh are
			// called by unauthenticated devices
			r.With(s.requireAuth).Post("/handshake", s.handleHandshake)
			r.Post("/exchange", s.handleExchange)
			r.Post("/refresh", s.handleRefresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/sync", s.handleSyncPush)
			r.Get("/videos", s.handleListVideos)
			r.Get("/videos/{youtubeID}/notes", s.handleListVideoNotes)
		})
	})

	return r
}
