package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizwhiz-backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, name, email, is_admin, created_at, last_login_at`

// Upsert registers a profile by email. An existing profile keeps its ID and
// gets the new name, except on admin sign-in where the stored name wins.
// last_login_at is refreshed either way.
func (r *ProfileRepo) Upsert(ctx context.Context, name, email string, isAdmin bool) (*models.Profile, error) {
	p := &models.Profile{}
	query := `
		INSERT INTO profiles (id, name, email, is_admin, last_login_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (email) DO UPDATE
		SET name = CASE WHEN EXCLUDED.is_admin THEN profiles.name ELSE EXCLUDED.name END,
		    is_admin = profiles.is_admin OR EXCLUDED.is_admin,
		    last_login_at = NOW()
		RETURNING ` + profileColumns

	err := r.pool.QueryRow(ctx, query, uuid.New(), name, strings.ToLower(email), isAdmin).Scan(
		&p.ID, &p.Name, &p.Email, &p.IsAdmin, &p.CreatedAt, &p.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Email, &p.IsAdmin, &p.CreatedAt, &p.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
