// Package services contains server-side business logic. This file implements
// AuthService, which handles the device-linking handshake, the code exchange,
// and refresh token rotation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/dbx"
	"github.com/dmitrijs2005/videonotes/internal/server/auth"
	"github.com/dmitrijs2005/videonotes/internal/server/config"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService provides device-linking operations:
// - IssueHandshake: mint a one-time code for a signed-in dashboard user
// - Exchange: swap the code for a token pair, registering a device session
// - Refresh: rotate a refresh token and mint a new access token
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	handshakeValidityDuration    time.Duration
	maxSessionsPerAgent          int
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		handshakeValidityDuration:    cfg.HandshakeValidityDuration,
		maxSessionsPerAgent:          cfg.MaxSessionsPerAgent,
	}
}

// IssueHandshake mints a one-time code for userID. Expired codes and the
// user's previous codes are swept on the way, so the table never needs a
// background job and at most one code per user is live.
func (s *AuthService) IssueHandshake(ctx context.Context, userID string) (string, error) {
	repo := s.repomanager.Handshakes(s.db)

	if err := repo.DeleteStale(ctx, userID); err != nil {
		return "", fmt.Errorf("error sweeping stale handshakes: %v", err)
	}

	code, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrInternal
	}

	if err := repo.Create(ctx, code, userID, s.handshakeValidityDuration); err != nil {
		return "", fmt.Errorf("error storing handshake: %v", err)
	}

	return code, nil
}

// Exchange consumes a handshake code and registers a device session. A code
// can be exchanged exactly once; expired or unknown codes are rejected. The
// per-(user, user-agent) session cap is enforced here, evicting the oldest
// sessions.
func (s *AuthService) Exchange(ctx context.Context, code, userAgent string) (*TokenPair, error) {

	var pair *TokenPair
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		hs, err := s.repomanager.Handshakes(tx).Consume(ctx, code)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrHandshakeConsumed
			}
			return fmt.Errorf("error consuming handshake: %v", err)
		}
		if hs.ExpiresAt.Before(time.Now()) {
			return common.ErrHandshakeExpired
		}

		sessions := s.repomanager.Sessions(tx)
		if err := sessions.DeleteExpired(ctx, hs.UserID); err != nil {
			return fmt.Errorf("error sweeping expired sessions: %v", err)
		}

		pair, err = s.generateTokenPair(ctx, hs.UserID, userAgent, tx)
		if err != nil {
			return err
		}

		// The new session counts toward the cap, so keep is the cap itself.
		if err := sessions.EvictOverflow(ctx, hs.UserID, userAgent, s.maxSessionsPerAgent); err != nil {
			return fmt.Errorf("error evicting overflow sessions: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired; unknown
// tokens yield ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.Sessions(s.db)

	session, err := repo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error searching session: %v", err)
	}
	if session.ExpiresAt.Before(time.Now()) {
		if err := repo.Delete(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("error deleting expired session: %v", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		access, err := auth.GenerateToken(session.UserID, s.jwtSecret, s.accessTokenValidityDuration)
		if err != nil {
			return common.ErrInternal
		}
		refresh, err := common.MakeRandHexString(32)
		if err != nil {
			return common.ErrInternal
		}
		if err := s.repomanager.Sessions(tx).Rotate(ctx, session.ID, refresh, s.refreshTokenValidityDuration); err != nil {
			return fmt.Errorf("error rotating session: %v", err)
		}
		pair = &TokenPair{AccessToken: access, RefreshToken: refresh}
		return nil
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// UserIDFromAccessToken verifies an access token and returns its subject.
func (s *AuthService) UserIDFromAccessToken(tokenString string) (string, error) {
	return auth.GetUserIDFromToken(tokenString, s.jwtSecret)
}

// SessionCookie mints the short-lived dashboard cookie used to authorize the
// handshake endpoint itself.
func (s *AuthService) SessionCookie(userID string, validity time.Duration) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, validity)
}

func (s *AuthService) generateTokenPair(ctx context.Context, userID, userAgent string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}
	if _, err := s.repomanager.Sessions(tx).Create(ctx, userID, refresh, userAgent, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("error creating session: %v", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
