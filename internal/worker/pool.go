package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"quizwhiz-backend/internal/logger"
	"quizwhiz-backend/internal/models"
	"quizwhiz-backend/internal/quizgen"
	"quizwhiz-backend/internal/services"
)

const (
	popTimeout = 30 * time.Second
	// jobTimeout also bounds the lock so a crashed worker frees it.
	jobTimeout = 10 * time.Minute
)

type JobRecorder interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Complete(ctx context.Context, id, resultID uuid.UUID) error
	UpdateError(ctx context.Context, id uuid.UUID, code, errMsg string) error
}

type QuizGenerator interface {
	DocumentQuiz(ctx context.Context, userID, documentID uuid.UUID, count int) (*models.GeneratedQuiz, error)
}

type Publisher interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

// Pool runs document quiz generation jobs pulled from Redis. A failed job is
// never retried: it is marked failed with an error code and the user decides
// whether to try again.
type Pool struct {
	redis       *redis.Client
	jobs        JobRecorder
	quizzes     QuizGenerator
	events      Publisher
	workerCount int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(redisClient *redis.Client, jobs JobRecorder, quizzes QuizGenerator, events Publisher, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		jobs:        jobs,
		quizzes:     quizzes,
		events:      events,
		workerCount: workerCount,
	}
}

func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	queue := services.QueueKey(models.JobTypeQuizGeneration)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i, queue)
	}

	logger.L().WithField("workers", p.workerCount).Info("worker pool started")
}

// Stop signals the workers and waits for jobs in flight to finish.
func (p *Pool) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context, id int, queue string) {
	defer p.wg.Done()
	log := logger.L().WithField("worker", id)

	for {
		result, err := p.redis.BLPop(ctx, popTimeout, queue).Result()
		if ctx.Err() != nil {
			log.Debug("worker shutting down")
			return
		}
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.WithError(err).Warn("queue pop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.WithError(err).Error("failed to parse job")
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, id, jobTimeout).Result()
		if err != nil || !locked {
			continue
		}

		// Shutdown lets the current job finish rather than leaving it half done.
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		p.Process(jobCtx, &job)
		cancel()

		p.redis.Del(context.Background(), lockKey)
	}
}

// Process runs one job to completion and records the outcome.
func (p *Pool) Process(ctx context.Context, job *models.Job) {
	ctx = logger.ContextWithUserID(ctx, job.UserID.String())
	log := logger.WithContext(ctx).WithFields(logrus.Fields{
		"job_id":   job.ID,
		"job_type": job.Type,
	})
	log.Info("processing job")

	if err := p.jobs.UpdateStatus(ctx, job.ID, models.JobStatusProcessing); err != nil {
		log.WithError(err).Warn("failed to mark job processing")
	}
	p.events.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:    job.ID,
			Step:     1,
			StepName: "Generating quiz",
		},
	})

	var (
		quiz *models.GeneratedQuiz
		err  error
	)
	switch job.Type {
	case models.JobTypeQuizGeneration:
		var cfg models.QuizJobConfig
		if err = json.Unmarshal(job.ConfigJSON, &cfg); err != nil {
			err = &quizgen.InvalidRequestError{Field: "config", Message: "unreadable job config"}
			break
		}
		quiz, err = p.quizzes.DocumentQuiz(ctx, job.UserID, job.ReferenceID, cfg.Count)
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		p.handleFailure(ctx, log, job, err)
		return
	}
	p.handleSuccess(ctx, log, job, quiz)
}

func (p *Pool) handleSuccess(ctx context.Context, log *logrus.Entry, job *models.Job, quiz *models.GeneratedQuiz) {
	if err := p.jobs.Complete(ctx, job.ID, quiz.ID); err != nil {
		log.WithError(err).Error("failed to mark job completed")
	}

	requested, kept := quiz.RequestedCount, len(quiz.Questions)
	p.events.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:      job.ID,
			ResultID:   quiz.ID,
			ResultType: "quiz",
			Kept:       kept,
			Requested:  requested,
		},
	})

	log.WithFields(logrus.Fields{
		"quiz_id":   quiz.ID,
		"kept":      kept,
		"requested": requested,
	}).Info("job completed")
}

func (p *Pool) handleFailure(ctx context.Context, log *logrus.Entry, job *models.Job, err error) {
	code := FailureCode(err)
	msg := FailureMessage(code)

	log.WithError(err).WithField("error_code", code).Warn("job failed")

	// The job context may be what failed; record the outcome regardless.
	recordCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if uerr := p.jobs.UpdateError(recordCtx, job.ID, code, msg); uerr != nil {
		log.WithError(uerr).Error("failed to record job error")
	}

	p.events.PublishUpdate(recordCtx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    code,
			ErrorMessage: msg,
		},
	})
}

// FailureCode classifies a job error for the client.
func FailureCode(err error) string {
	if code := quizgen.ErrorCode(err); code != "" {
		return code
	}
	var nf *services.NotFoundError
	if errors.As(err, &nf) {
		return "NOT_FOUND"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return quizgen.CodeServiceUnavailable
	}
	return "JOB_FAILED"
}

// FailureMessage is the user-facing text stored with a failed job.
func FailureMessage(code string) string {
	switch code {
	case quizgen.CodeInvalidRequest:
		return "The request was not valid for this document."
	case quizgen.CodeServiceUnavailable:
		return "The generation service is unavailable. Please retry later."
	case quizgen.CodeNoUsableContent:
		return "No usable questions could be produced. Try a different document."
	case "NOT_FOUND":
		return "The document no longer exists."
	default:
		return "Quiz generation failed."
	}
}
