package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quizwhiz-backend/internal/models"
)

// ErrNoSession is returned when the requested per-user state is absent or
// expired.
var ErrNoSession = errors.New("no session state")

const (
	activeQuizPrefix    = "quizwhiz:active_quiz:"
	quizSessionPrefix   = "quizwhiz:quiz_session:"
	attemptResultPrefix = "quizwhiz:attempt_result:"
)

func activeQuizKey(userID uuid.UUID) string    { return activeQuizPrefix + userID.String() }
func quizSessionKey(userID uuid.UUID) string   { return quizSessionPrefix + userID.String() }
func attemptResultKey(userID uuid.UUID) string { return attemptResultPrefix + userID.String() }

// SessionStore keeps the transient per-user quiz state in Redis.
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionStore(redisClient *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{redis: redisClient, ttl: ttl}
}

func (s *SessionStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.redis.Set(ctx, key, data, s.ttl).Err()
}

func (s *SessionStore) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNoSession
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetActiveQuiz replaces the active quiz and discards any quiz in progress.
func (s *SessionStore) SetActiveQuiz(ctx context.Context, userID uuid.UUID, q *models.ActiveQuiz) error {
	if err := s.setJSON(ctx, activeQuizKey(userID), q); err != nil {
		return err
	}
	return s.redis.Del(ctx, quizSessionKey(userID)).Err()
}

func (s *SessionStore) GetActiveQuiz(ctx context.Context, userID uuid.UUID) (*models.ActiveQuiz, error) {
	var q models.ActiveQuiz
	if err := s.getJSON(ctx, activeQuizKey(userID), &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *SessionStore) SetQuizSession(ctx context.Context, userID uuid.UUID, sess *models.QuizSession) error {
	return s.setJSON(ctx, quizSessionKey(userID), sess)
}

func (s *SessionStore) GetQuizSession(ctx context.Context, userID uuid.UUID) (*models.QuizSession, error) {
	var sess models.QuizSession
	if err := s.getJSON(ctx, quizSessionKey(userID), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) ClearQuizSession(ctx context.Context, userID uuid.UUID) error {
	return s.redis.Del(ctx, quizSessionKey(userID)).Err()
}

func (s *SessionStore) SetAttemptResult(ctx context.Context, userID uuid.UUID, r *models.AttemptResult) error {
	return s.setJSON(ctx, attemptResultKey(userID), r)
}

func (s *SessionStore) GetAttemptResult(ctx context.Context, userID uuid.UUID) (*models.AttemptResult, error) {
	var r models.AttemptResult
	if err := s.getJSON(ctx, attemptResultKey(userID), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
