package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"quizwhiz-backend/internal/logger"
	"quizwhiz-backend/internal/models"
	"quizwhiz-backend/internal/quizgen"
)

// feedbackContextChars caps the document excerpt sent with each feedback
// request.
const feedbackContextChars = 4000

type QuizStore interface {
	Create(ctx context.Context, q *models.GeneratedQuiz) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedQuiz, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.GeneratedQuiz, error)
	CreateAttempt(ctx context.Context, a *models.QuizAttempt) error
	ListAttemptsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QuizAttempt, error)
}

type JobStore interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

type JobQueue interface {
	Enqueue(ctx context.Context, job *models.Job) error
}

// SessionState is the per-user quiz state; SessionStore is the Redis
// implementation.
type SessionState interface {
	SetActiveQuiz(ctx context.Context, userID uuid.UUID, q *models.ActiveQuiz) error
	GetActiveQuiz(ctx context.Context, userID uuid.UUID) (*models.ActiveQuiz, error)
	SetQuizSession(ctx context.Context, userID uuid.UUID, sess *models.QuizSession) error
	GetQuizSession(ctx context.Context, userID uuid.UUID) (*models.QuizSession, error)
	ClearQuizSession(ctx context.Context, userID uuid.UUID) error
	SetAttemptResult(ctx context.Context, userID uuid.UUID, r *models.AttemptResult) error
	GetAttemptResult(ctx context.Context, userID uuid.UUID) (*models.AttemptResult, error)
}

// DocumentSource gives the quiz flows read access to stored batches.
type DocumentSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Load(ctx context.Context, doc *models.Document) ([]quizgen.Document, error)
	ContextExcerpt(ctx context.Context, doc *models.Document, maxChars int) string
}

// QuizService ties the generation pipeline to persistence and the per-user
// play state.
type QuizService struct {
	gen                 *quizgen.Generator
	quizzes             QuizStore
	jobs                JobStore
	queue               JobQueue
	sessions            SessionState
	docs                DocumentSource
	feedbackConcurrency int
	now                 func() time.Time
}

func NewQuizService(gen *quizgen.Generator, quizzes QuizStore, jobs JobStore, queue JobQueue, sessions SessionState, docs DocumentSource, feedbackConcurrency int) *QuizService {
	return &QuizService{
		gen:                 gen,
		quizzes:             quizzes,
		jobs:                jobs,
		queue:               queue,
		sessions:            sessions,
		docs:                docs,
		feedbackConcurrency: feedbackConcurrency,
		now:                 time.Now,
	}
}

// Topics lists the general-knowledge topics and the default one.
func (s *QuizService) Topics() models.TopicsResponse {
	topics := make([]string, len(quizgen.Topics))
	copy(topics, quizgen.Topics)
	return models.TopicsResponse{Topics: topics, Default: quizgen.MixedTopic}
}

// TopicQuiz generates a quiz on a topic, stores it and makes it the user's
// active quiz.
func (s *QuizService) TopicQuiz(ctx context.Context, userID uuid.UUID, topic string, count int) (*models.GeneratedQuiz, error) {
	res, report, err := s.gen.QuizFromTopic(ctx, topic, count)
	if err != nil {
		return nil, err
	}
	if err := s.checkPlayable("topic-quiz", res, report); err != nil {
		return nil, err
	}

	topic = strings.TrimSpace(topic)
	q := &models.GeneratedQuiz{
		ID:             uuid.New(),
		UserID:         userID,
		Topic:          &topic,
		Source:         models.QuizSourceTopic,
		Title:          topic,
		RequestedCount: count,
		Questions:      res.Quiz,
		FlashFacts:     res.FlashFacts,
		Report:         report,
	}
	if err := s.save(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// FlashFacts generates standalone facts on a topic. Nothing is persisted.
func (s *QuizService) FlashFacts(ctx context.Context, topic string, count int) (*quizgen.Result, error) {
	res, _, err := s.gen.FlashFacts(ctx, topic, count)
	return res, err
}

// RequestDocumentQuiz validates the request and queues the generation job.
// Bound violations and unknown documents fail here, before any job exists.
func (s *QuizService) RequestDocumentQuiz(ctx context.Context, userID, documentID uuid.UUID, count int) (*models.Job, error) {
	if err := s.gen.CheckDocumentQuizCount(count); err != nil {
		return nil, err
	}
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	cfg, _ := json.Marshal(models.QuizJobConfig{Count: count})
	job := &models.Job{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        models.JobTypeQuizGeneration,
		ReferenceID: documentID,
		ConfigJSON:  cfg,
		Status:      models.JobStatusPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	logger.WithContext(ctx).WithFields(logrus.Fields{
		"job_id":      job.ID,
		"document_id": documentID,
		"count":       count,
	}).Info("document quiz queued")
	return job, nil
}

// DocumentQuiz runs a document quiz generation to completion. The worker
// pool calls it for queued jobs.
func (s *QuizService) DocumentQuiz(ctx context.Context, userID, documentID uuid.UUID, count int) (*models.GeneratedQuiz, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	files, err := s.docs.Load(ctx, doc)
	if err != nil {
		return nil, err
	}

	res, report, err := s.gen.QuizFromDocuments(ctx, files, count)
	if err != nil {
		return nil, err
	}
	if err := s.checkPlayable("document-quiz", res, report); err != nil {
		return nil, err
	}

	q := &models.GeneratedQuiz{
		ID:             uuid.New(),
		UserID:         userID,
		DocumentID:     &doc.ID,
		Source:         models.QuizSourceDocument,
		Title:          doc.Title,
		RequestedCount: count,
		Questions:      res.Quiz,
		FlashFacts:     res.FlashFacts,
		Report:         report,
	}
	if err := s.save(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// checkPlayable rejects a generation that kept flash facts but no question.
// Under the empty policy the quiz is still stored, but save leaves the
// active quiz alone.
func (s *QuizService) checkPlayable(op string, res *quizgen.Result, report *quizgen.Report) error {
	if len(res.Quiz) > 0 || s.gen.Options().EmptyPolicy == quizgen.PolicyEmpty {
		return nil
	}
	noContent := &quizgen.NoUsableContentError{Op: op}
	if report != nil {
		noContent.Report = *report
	}
	return noContent
}

// save stores q and makes it the active quiz. A quiz without questions
// never replaces the one the user is playing.
func (s *QuizService) save(ctx context.Context, q *models.GeneratedQuiz) error {
	if err := s.quizzes.Create(ctx, q); err != nil {
		return fmt.Errorf("store quiz: %w", err)
	}
	if len(q.Questions) == 0 {
		return nil
	}
	return s.sessions.SetActiveQuiz(ctx, q.UserID, activeFrom(q, s.now()))
}

func activeFrom(q *models.GeneratedQuiz, now time.Time) *models.ActiveQuiz {
	return &models.ActiveQuiz{
		QuizID:     q.ID,
		Title:      q.Title,
		Source:     q.Source,
		DocumentID: q.DocumentID,
		Questions:  q.Questions,
		FlashFacts: q.FlashFacts,
		SetAt:      now,
	}
}

// GetQuiz returns a stored quiz. Document quizzes are shared library
// content; topic quizzes are visible to their owner only.
func (s *QuizService) GetQuiz(ctx context.Context, userID, id uuid.UUID) (*models.GeneratedQuiz, error) {
	q, err := s.quizzes.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Quiz not found"}
	}
	if err != nil {
		return nil, err
	}
	if q.Source == models.QuizSourceTopic && q.UserID != userID {
		return nil, &ForbiddenError{Message: "Access denied"}
	}
	return q, nil
}

func (s *QuizService) ListDocumentQuizzes(ctx context.Context, documentID uuid.UUID) ([]*models.GeneratedQuiz, error) {
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.quizzes.ListByDocument(ctx, documentID)
}

func (s *QuizService) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Job not found"}
	}
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, &NotFoundError{Message: "Job not found"}
	}
	return job, nil
}

// Activate makes a stored quiz the user's active quiz.
func (s *QuizService) Activate(ctx context.Context, userID, quizID uuid.UUID) (*models.ActiveQuiz, error) {
	q, err := s.GetQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if len(q.Questions) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"quiz": "Quiz has no questions"}}
	}
	active := activeFrom(q, s.now())
	if err := s.sessions.SetActiveQuiz(ctx, userID, active); err != nil {
		return nil, err
	}
	return active, nil
}

func (s *QuizService) ActiveQuiz(ctx context.Context, userID uuid.UUID) (*models.ActiveQuiz, error) {
	return s.sessions.GetActiveQuiz(ctx, userID)
}

// StartSession begins playing the active quiz. A session already in progress
// for the same quiz is resumed with its saved answers.
func (s *QuizService) StartSession(ctx context.Context, userID uuid.UUID) (*models.QuizSession, error) {
	active, err := s.sessions.GetActiveQuiz(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active.Questions) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"quiz": "Active quiz has no questions"}}
	}

	existing, err := s.sessions.GetQuizSession(ctx, userID)
	switch {
	case err == nil && existing.QuizID == active.QuizID:
		return existing, nil
	case err != nil && !errors.Is(err, ErrNoSession):
		return nil, err
	}

	sess := &models.QuizSession{
		QuizID:     active.QuizID,
		Title:      active.Title,
		DocumentID: active.DocumentID,
		Questions:  active.Questions,
		Answers:    make([]string, len(active.Questions)),
		StartedAt:  s.now(),
	}
	if err := s.sessions.SetQuizSession(ctx, userID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SaveAnswer records the answer to one question. The answer must be one of
// that question's options.
func (s *QuizService) SaveAnswer(ctx context.Context, userID uuid.UUID, req models.SaveAnswerRequest) (*models.QuizSession, error) {
	sess, err := s.sessions.GetQuizSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.QuestionIndex < 0 || req.QuestionIndex >= len(sess.Questions) {
		return nil, &ValidationError{Fields: map[string]string{
			"question_index": fmt.Sprintf("must be between 0 and %d", len(sess.Questions)-1),
		}}
	}
	q := sess.Questions[req.QuestionIndex]
	valid := false
	for _, o := range q.Options {
		if o == req.Answer {
			valid = true
			break
		}
	}
	if !valid {
		return nil, &ValidationError{Fields: map[string]string{"answer": "must be one of the question's options"}}
	}

	for len(sess.Answers) < len(sess.Questions) {
		sess.Answers = append(sess.Answers, "")
	}
	sess.Answers[req.QuestionIndex] = req.Answer
	if err := s.sessions.SetQuizSession(ctx, userID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Submit scores the session, records the attempt in the user's history and
// keeps the result for the results page.
func (s *QuizService) Submit(ctx context.Context, userID uuid.UUID) (*models.AttemptResult, error) {
	sess, err := s.sessions.GetQuizSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := Score(sess, s.now())
	if err != nil {
		return nil, err
	}

	quizID := sess.QuizID
	attempt := &models.QuizAttempt{
		ID:             uuid.New(),
		UserID:         userID,
		QuizID:         &quizID,
		QuizTitle:      sess.Title,
		Score:          result.Score,
		TotalQuestions: result.Total,
		Answers:        sess.Answers,
	}
	if err := s.quizzes.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("store attempt: %w", err)
	}
	result.AttemptID = attempt.ID

	if err := s.sessions.SetAttemptResult(ctx, userID, result); err != nil {
		return nil, err
	}
	if err := s.sessions.ClearQuizSession(ctx, userID); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("clear quiz session")
	}

	logger.WithContext(ctx).WithFields(logrus.Fields{
		"attempt_id": attempt.ID,
		"score":      result.Score,
		"total":      result.Total,
	}).Info("quiz submitted")
	return result, nil
}

func (s *QuizService) Result(ctx context.Context, userID uuid.UUID) (*models.AttemptResult, error) {
	return s.sessions.GetAttemptResult(ctx, userID)
}

// ResultFeedback explains every wrong answer of the last result. Items whose
// explanation could not be produced carry fallback text.
func (s *QuizService) ResultFeedback(ctx context.Context, userID uuid.UUID) (*models.AttemptResult, error) {
	result, err := s.sessions.GetAttemptResult(ctx, userID)
	if err != nil {
		return nil, err
	}

	mistakes := result.Mistakes()
	if len(mistakes) == 0 {
		result.Feedback = []quizgen.FeedbackItem{}
		return result, nil
	}

	excerpt := s.feedbackContext(ctx, result)
	for i := range mistakes {
		mistakes[i].Context = excerpt
	}

	result.Feedback = s.gen.FeedbackForMistakes(ctx, mistakes, s.feedbackConcurrency)
	if err := s.sessions.SetAttemptResult(ctx, userID, result); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("store feedback")
	}
	return result, nil
}

func (s *QuizService) feedbackContext(ctx context.Context, result *models.AttemptResult) string {
	if result.DocumentID == nil {
		return "Quiz de culture générale : " + result.Title
	}
	doc, err := s.docs.GetByID(ctx, *result.DocumentID)
	if err != nil {
		return "Document : " + result.Title
	}
	if excerpt := s.docs.ContextExcerpt(ctx, doc, feedbackContextChars); excerpt != "" {
		return excerpt
	}
	return "Document : " + doc.Title
}

func (s *QuizService) Attempts(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QuizAttempt, error) {
	return s.quizzes.ListAttemptsByUser(ctx, userID, limit)
}
