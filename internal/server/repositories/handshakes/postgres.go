package handshakes

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

func (r *PostgresRepository) Create(ctx context.Context, code string, userID string, validity time.Duration) error {

	query :=
		`INSERT INTO auth_handshakes (code, user_id, expires_at)
         VALUES ($1, $2, $3)
		 `

	_, err := r.db.ExecContext(ctx, query, code, userID, time.Now().Add(validity))

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, code string) (*models.Handshake, error) {

	// DELETE ... RETURNING makes single use atomic: two racing exchanges of
	// the same code cannot both see a row.
	query :=
		`DELETE FROM auth_handshakes
		 WHERE code = $1
		 RETURNING code, user_id, expires_at, created_at
		 `

	h := &models.Handshake{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(&h.Code, &h.UserID, &h.ExpiresAt, &h.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return h, nil
}

func (r *PostgresRepository) DeleteStale(ctx context.Context, userID string) error {

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_handshakes WHERE expires_at < now() OR user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
