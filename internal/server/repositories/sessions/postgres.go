package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/dbx"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, refreshToken, userAgent string, validity time.Duration) (*models.Session, error) {

	query :=
		`INSERT INTO extension_sessions (user_id, refresh_token, user_agent, expires_at)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	s := &models.Session{
		UserID:       userID,
		RefreshToken: refreshToken,
		UserAgent:    userAgent,
		ExpiresAt:    time.Now().Add(validity),
	}
	err := r.db.QueryRowContext(ctx, query, userID, refreshToken, userAgent, s.ExpiresAt).
		Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) FindByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	query :=
		`SELECT id, user_id, refresh_token, user_agent, expires_at, created_at
		 FROM extension_sessions
		 WHERE refresh_token = $1
		 `

	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, refreshToken).Scan(
		&s.ID, &s.UserID, &s.RefreshToken, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Rotate(ctx context.Context, id, newToken string, validity time.Duration) error {

	query :=
		`UPDATE extension_sessions
		 SET refresh_token = $2, expires_at = $3
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, id, newToken, time.Now().Add(validity))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	_, err := r.db.ExecContext(ctx, `DELETE FROM extension_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, userID string) error {

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM extension_sessions WHERE user_id = $1 AND expires_at < now()`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) EvictOverflow(ctx context.Context, userID, userAgent string, keep int) error {

	query :=
		`DELETE FROM extension_sessions
		 WHERE user_id = $1 AND user_agent = $2 AND id NOT IN (
		     SELECT id FROM extension_sessions
		     WHERE user_id = $1 AND user_agent = $2
		     ORDER BY created_at DESC
		     LIMIT $3
		 )
		 `

	_, err := r.db.ExecContext(ctx, query, userID, userAgent, keep)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
