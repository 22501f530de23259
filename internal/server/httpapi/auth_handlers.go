package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/server/services"
)

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func toTokenPairResponse(pair *services.TokenPair) tokenPairResponse {
	return tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}

// handleHandshake mints a one-time linking code for the signed-in dashboard
// user. POST /api/auth/handshake
func (s *Server) handleHandshake(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	code, err := s.auth.IssueHandshake(r.Context(), userID)
	if err != nil {
		s.logger.Error(r.Context(), "handshake issue failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not issue handshake")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

// handleExchange swaps a one-time code for a token pair.
// POST /api/auth/exchange
func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}

	pair, err := s.auth.Exchange(r.Context(), body.Code, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, common.ErrHandshakeConsumed):
			writeError(w, http.StatusUnauthorized, "code already used or unknown")
		case errors.Is(err, common.ErrHandshakeExpired):
			writeError(w, http.StatusUnauthorized, "code expired")
		default:
			s.logger.Error(r.Context(), "exchange failed", "error", err)
			writeError(w, http.StatusInternalServerError, "exchange failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

// handleRefresh rotates a refresh token. POST /api/auth/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "missing refreshToken")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "unknown refresh token")
		case errors.Is(err, common.ErrRefreshTokenExpired):
			writeError(w, http.StatusUnauthorized, "refresh token expired")
		default:
			s.logger.Error(r.Context(), "refresh failed", "error", err)
			writeError(w, http.StatusInternalServerError, "refresh failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, toTokenPairResponse(pair))
}
