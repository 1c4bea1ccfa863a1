package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizwhiz-backend/internal/models"
)

type QuizRepo struct {
	pool *pgxpool.Pool
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

const quizColumns = `id, user_id, document_id, topic, source, title, requested_count, questions_json, flash_facts_json, report_json, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*models.GeneratedQuiz, error) {
	q := &models.GeneratedQuiz{}
	var questions, facts, report []byte
	err := row.Scan(&q.ID, &q.UserID, &q.DocumentID, &q.Topic, &q.Source, &q.Title,
		&q.RequestedCount, &questions, &facts, &report, &q.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(facts) > 0 {
		if err := json.Unmarshal(facts, &q.FlashFacts); err != nil {
			return nil, fmt.Errorf("decode flash facts: %w", err)
		}
	}
	if len(report) > 0 {
		if err := json.Unmarshal(report, &q.Report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
	}
	return q, nil
}

func (r *QuizRepo) Create(ctx context.Context, q *models.GeneratedQuiz) error {
	q.ID = uuid.New()

	questionsBytes, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	if q.Questions == nil {
		questionsBytes = []byte("[]")
	}

	var factsBytes, reportBytes []byte
	if q.FlashFacts != nil {
		if factsBytes, err = json.Marshal(q.FlashFacts); err != nil {
			return err
		}
	}
	if q.Report != nil {
		if reportBytes, err = json.Marshal(q.Report); err != nil {
			return err
		}
	}

	query := `INSERT INTO generated_quizzes (id, user_id, document_id, topic, source, title, requested_count, questions_json, flash_facts_json, report_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		q.ID, q.UserID, q.DocumentID, q.Topic, q.Source, q.Title, q.RequestedCount,
		questionsBytes, factsBytes, reportBytes,
	).Scan(&q.CreatedAt)
}

func (r *QuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedQuiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM generated_quizzes WHERE id = $1`, id))
}

// ListByDocument returns the quizzes generated from a batch, newest first.
func (r *QuizRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.GeneratedQuiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM generated_quizzes WHERE document_id = $1 ORDER BY created_at DESC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]*models.GeneratedQuiz, 0)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// Quiz Attempts

func (r *QuizRepo) CreateAttempt(ctx context.Context, a *models.QuizAttempt) error {
	a.ID = uuid.New()

	answers := a.Answers
	if answers == nil {
		answers = []string{}
	}
	answersBytes, err := json.Marshal(answers)
	if err != nil {
		return err
	}

	query := `INSERT INTO quiz_attempts (id, user_id, quiz_id, quiz_title, score, total_questions, answers_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING attempted_at`

	return r.pool.QueryRow(ctx, query,
		a.ID, a.UserID, a.QuizID, a.QuizTitle, a.Score, a.TotalQuestions, answersBytes,
	).Scan(&a.AttemptedAt)
}

func scanAttempt(row rowScanner) (*models.QuizAttempt, error) {
	a := &models.QuizAttempt{}
	var answers []byte
	err := row.Scan(&a.ID, &a.UserID, &a.QuizID, &a.QuizTitle, &a.Score, &a.TotalQuestions, &answers, &a.AttemptedAt)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	return a, nil
}

const attemptColumns = `id, user_id, quiz_id, quiz_title, score, total_questions, answers_json, attempted_at`

func (r *QuizRepo) GetAttemptByID(ctx context.Context, id uuid.UUID) (*models.QuizAttempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = $1`, id))
}

// ListAttemptsByUser returns a user's history, newest first.
func (r *QuizRepo) ListAttemptsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QuizAttempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts WHERE user_id = $1 ORDER BY attempted_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]*models.QuizAttempt, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
