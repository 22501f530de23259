package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {

	query :=
		`INSERT INTO profiles (email, name)
         VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		profile.Email, profile.Name).Scan(&profile.ID, &profile.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}

func (r *PostgresRepository) EnsureExists(ctx context.Context, profile *models.Profile) error {

	query :=
		`INSERT INTO profiles (id, email, name)
         VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, profile.ID, profile.Email, profile.Name)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query :=
		`SELECT id, email, name, created_at FROM profiles
		 WHERE id = $1
		 `

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&profile.ID, &profile.Email, &profile.Name, &profile.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query :=
		`SELECT id, email, name, created_at FROM profiles
		 WHERE email = $1
		 `

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&profile.ID, &profile.Email, &profile.Name, &profile.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}
