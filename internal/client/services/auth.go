// Package services contains the device-side application services: token
// handling against the cloud auth endpoints and the full-snapshot sync push.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/logging"
)

// Tokens bundles the short-lived access token with the long-lived,
// server-rotated refresh token.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Metadata keys for the stored pair.
const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
)

// AuthActions manages the device's token pair: exchange, refresh, and
// persistence in the local metadata store.
type AuthActions struct {
	baseURL string
	client  *http.Client
	meta    metadata.Repository
	logger  logging.Logger
}

// NewAuthActions constructs AuthActions against the given server base URL.
func NewAuthActions(baseURL string, meta metadata.Repository, logger logging.Logger) *AuthActions {
	return &AuthActions{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		meta:    meta,
		logger:  logger,
	}
}

// GetTokens returns the stored pair, or nil when the device has never
// completed a handshake (or has been logged out).
func (a *AuthActions) GetTokens(ctx context.Context) (*Tokens, error) {
	access, err := a.meta.Get(ctx, keyAccessToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	refresh, err := a.meta.Get(ctx, keyRefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Tokens{AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

// SetTokens persists the pair.
func (a *AuthActions) SetTokens(ctx context.Context, t *Tokens) error {
	if err := a.meta.Set(ctx, keyAccessToken, []byte(t.AccessToken)); err != nil {
		return err
	}
	return a.meta.Set(ctx, keyRefreshToken, []byte(t.RefreshToken))
}

// ClearTokens removes the pair (logout, or a refresh token the server no
// longer accepts).
func (a *AuthActions) ClearTokens(ctx context.Context) error {
	if err := a.meta.Delete(ctx, keyAccessToken); err != nil {
		return err
	}
	return a.meta.Delete(ctx, keyRefreshToken)
}

// IsAuthenticated reports whether a stored pair exists.
func (a *AuthActions) IsAuthenticated(ctx context.Context) bool {
	t, err := a.GetTokens(ctx)
	return err == nil && t != nil
}

// ExchangeCode swaps a one-time handshake code for a token pair and stores it.
func (a *AuthActions) ExchangeCode(ctx context.Context, code string) error {
	var tokens Tokens
	if err := a.postJSON(ctx, "/api/auth/exchange", map[string]string{"code": code}, &tokens); err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	return a.SetTokens(ctx, &tokens)
}

// Refresh rotates the stored pair using the refresh token. When the server
// rejects the token the stored pair is cleared: it is dead weight, the user
// has to run the handshake again.
func (a *AuthActions) Refresh(ctx context.Context) (*Tokens, error) {
	current, err := a.GetTokens(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, common.ErrNotAuthenticated
	}

	var tokens Tokens
	err = a.postJSON(ctx, "/api/auth/refresh", map[string]string{"refreshToken": current.RefreshToken}, &tokens)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			if clearErr := a.ClearTokens(ctx); clearErr != nil {
				a.logger.Warn(ctx, "clearing rejected tokens failed", "error", clearErr)
			}
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, err
	}

	if err := a.SetTokens(ctx, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// statusError marks a non-2xx reply, as opposed to a transport failure.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.status, e.body)
}

func (a *AuthActions) postJSON(ctx context.Context, path string, body any, dest any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &statusError{status: resp.StatusCode, body: errBody.Error}
	}

	if dest != nil {
		return json.NewDecoder(resp.Body).Decode(dest)
	}
	return nil
}
