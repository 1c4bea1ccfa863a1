package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizwhiz-backend/internal/models"
)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) error {
	j.ID = uuid.New()
	j.Status = models.JobStatusPending

	configBytes := []byte(j.ConfigJSON)
	if len(configBytes) == 0 {
		configBytes = []byte("{}")
	}

	query := `INSERT INTO jobs (id, user_id, type, reference_id, config_json, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		j.ID, j.UserID, j.Type, j.ReferenceID, configBytes, j.Status,
	).Scan(&j.CreatedAt)
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j := &models.Job{}
	query := `SELECT id, user_id, type, reference_id, config_json, status, error_code, error_message, result_id, created_at, completed_at
		FROM jobs WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&j.ID, &j.UserID, &j.Type, &j.ReferenceID, &j.ConfigJSON, &j.Status,
		&j.ErrorCode, &j.ErrorMessage, &j.ResultID, &j.CreatedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		_, err := r.pool.Exec(ctx,
			"UPDATE jobs SET status = $1, completed_at = $2 WHERE id = $3",
			status, time.Now(), id,
		)
		return err
	}
	_, err := r.pool.Exec(ctx, "UPDATE jobs SET status = $1 WHERE id = $2", status, id)
	return err
}

// Complete marks a job completed and links the stored result.
func (r *JobRepo) Complete(ctx context.Context, id, resultID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE jobs SET status = $1, result_id = $2, completed_at = $3 WHERE id = $4",
		models.JobStatusCompleted, resultID, time.Now(), id,
	)
	return err
}

// UpdateError marks a job failed with a machine-readable code.
func (r *JobRepo) UpdateError(ctx context.Context, id uuid.UUID, code, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE jobs SET status = $1, error_code = $2, error_message = $3, completed_at = $4 WHERE id = $5",
		models.JobStatusFailed, code, errMsg, time.Now(), id,
	)
	return err
}
