package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/videonotes/internal/common"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUserID contextKey = "user_id"

// requireAuth validates the caller and attaches the user id to the request
// context. Devices present a bearer access token; the dashboard presents its
// session cookie. Either one is accepted.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) authenticate(r *http.Request) (string, error) {
	authHeader := r.Header.Get(common.AuthorizationHeaderName)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", common.ErrInvalidToken
		}
		return s.auth.UserIDFromAccessToken(parts[1])
	}

	cookie, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return "", common.ErrUnauthorized
	}
	return s.auth.UserIDFromAccessToken(cookie.Value)
}

// getUserID extracts the authenticated user ID from request context.
// Returns empty string if not authenticated.
func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}
