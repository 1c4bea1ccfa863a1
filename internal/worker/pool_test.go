package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizwhiz-backend/internal/models"
	"quizwhiz-backend/internal/quizgen"
	"quizwhiz-backend/internal/services"
)

type recordedJob struct {
	statuses []string
	resultID uuid.UUID
	code     string
	msg      string
}

type stubJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*recordedJob
}

func (s *stubJobs) get(id uuid.UUID) *recordedJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobs == nil {
		s.jobs = map[uuid.UUID]*recordedJob{}
	}
	if s.jobs[id] == nil {
		s.jobs[id] = &recordedJob{}
	}
	return s.jobs[id]
}

func (s *stubJobs) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	j := s.get(id)
	j.statuses = append(j.statuses, status)
	return nil
}

func (s *stubJobs) Complete(_ context.Context, id, resultID uuid.UUID) error {
	j := s.get(id)
	j.statuses = append(j.statuses, models.JobStatusCompleted)
	j.resultID = resultID
	return nil
}

func (s *stubJobs) UpdateError(_ context.Context, id uuid.UUID, code, msg string) error {
	j := s.get(id)
	j.statuses = append(j.statuses, models.JobStatusFailed)
	j.code, j.msg = code, msg
	return nil
}

type stubGenerator struct {
	quiz  *models.GeneratedQuiz
	err   error
	calls int
	count int
}

func (g *stubGenerator) DocumentQuiz(_ context.Context, userID, documentID uuid.UUID, count int) (*models.GeneratedQuiz, error) {
	g.calls++
	g.count = count
	return g.quiz, g.err
}

type stubEvents struct {
	msgs []models.WSMessage
}

func (e *stubEvents) PublishUpdate(_ context.Context, _ uuid.UUID, msg models.WSMessage) {
	e.msgs = append(e.msgs, msg)
}

func newJob(count int) *models.Job {
	cfg, _ := json.Marshal(models.QuizJobConfig{Count: count})
	return &models.Job{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Type:        models.JobTypeQuizGeneration,
		ReferenceID: uuid.New(),
		ConfigJSON:  cfg,
	}
}

func TestProcess_Success(t *testing.T) {
	jobs := &stubJobs{}
	quiz := &models.GeneratedQuiz{ID: uuid.New(), RequestedCount: 10, Questions: make([]quizgen.Question, 8)}
	gen := &stubGenerator{quiz: quiz}
	events := &stubEvents{}
	p := NewPool(nil, jobs, gen, events, 1)
	job := newJob(10)

	p.Process(context.Background(), job)

	assert.Equal(t, 10, gen.count)
	rec := jobs.get(job.ID)
	assert.Equal(t, []string{models.JobStatusProcessing, models.JobStatusCompleted}, rec.statuses)
	assert.Equal(t, quiz.ID, rec.resultID)

	require.Len(t, events.msgs, 2)
	assert.Equal(t, "status_update", events.msgs[0].Type)
	assert.Equal(t, "completed", events.msgs[1].Type)
	done := events.msgs[1].Payload.(models.CompletedEvent)
	assert.Equal(t, 8, done.Kept)
	assert.Equal(t, 10, done.Requested)
}

func TestProcess_FailureIsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"service", &quizgen.ServiceUnavailableError{Op: "document-quiz", Err: errors.New("quota")}, quizgen.CodeServiceUnavailable},
		{"no content", &quizgen.NoUsableContentError{Op: "document-quiz"}, quizgen.CodeNoUsableContent},
		{"invalid", &quizgen.InvalidRequestError{Field: "count", Message: "must be between 5 and 1000"}, quizgen.CodeInvalidRequest},
		{"document gone", &services.NotFoundError{Message: "Document not found"}, "NOT_FOUND"},
		{"timeout", context.DeadlineExceeded, quizgen.CodeServiceUnavailable},
		{"other", errors.New("disk full"), "JOB_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &stubJobs{}
			gen := &stubGenerator{err: tt.err}
			events := &stubEvents{}
			p := NewPool(nil, jobs, gen, events, 1)
			job := newJob(10)

			p.Process(context.Background(), job)

			assert.Equal(t, 1, gen.calls)
			rec := jobs.get(job.ID)
			assert.Equal(t, []string{models.JobStatusProcessing, models.JobStatusFailed}, rec.statuses)
			assert.Equal(t, tt.code, rec.code)
			assert.Equal(t, FailureMessage(tt.code), rec.msg)

			require.Len(t, events.msgs, 2)
			evt := events.msgs[1].Payload.(models.ErrorEvent)
			assert.Equal(t, tt.code, evt.ErrorCode)
		})
	}
}

func TestProcess_BadConfig(t *testing.T) {
	jobs := &stubJobs{}
	gen := &stubGenerator{}
	p := NewPool(nil, jobs, gen, &stubEvents{}, 1)
	job := newJob(10)
	job.ConfigJSON = json.RawMessage(`"oops"`)

	p.Process(context.Background(), job)

	assert.Zero(t, gen.calls)
	assert.Equal(t, quizgen.CodeInvalidRequest, jobs.get(job.ID).code)
}

func TestProcess_UnknownType(t *testing.T) {
	jobs := &stubJobs{}
	gen := &stubGenerator{}
	p := NewPool(nil, jobs, gen, &stubEvents{}, 1)
	job := newJob(10)
	job.Type = "summary-generation"

	p.Process(context.Background(), job)

	assert.Zero(t, gen.calls)
	assert.Equal(t, "JOB_FAILED", jobs.get(job.ID).code)
}
