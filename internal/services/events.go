package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quizwhiz-backend/internal/logger"
	"quizwhiz-backend/internal/models"
)

// UserChannel is the pub/sub channel the websocket hub relays to a user.
func UserChannel(userID uuid.UUID) string {
	return "user_updates:" + userID.String()
}

// QueueKey is the Redis list a job type is pushed on.
func QueueKey(jobType string) string {
	return "queue:" + jobType
}

// EventPublisher pushes job events to the user's websocket connections.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redis: redisClient}
}

func (p *EventPublisher) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("encode ws message")
		return
	}
	if err := p.redis.Publish(ctx, UserChannel(userID), data).Err(); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("type", msg.Type).Warn("publish ws message")
	}
}

// RedisJobQueue pushes JSON-encoded jobs on per-type Redis lists.
type RedisJobQueue struct {
	redis *redis.Client
}

func NewRedisJobQueue(redisClient *redis.Client) *RedisJobQueue {
	return &RedisJobQueue{redis: redisClient}
}

func (q *RedisJobQueue) Enqueue(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, QueueKey(job.Type), data).Err()
}
