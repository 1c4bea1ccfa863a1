package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"quizwhiz-backend/internal/middleware"
	"quizwhiz-backend/internal/models"
	"quizwhiz-backend/internal/quizgen"
)

// QuizFlows is implemented by services.QuizService.
type QuizFlows interface {
	Topics() models.TopicsResponse
	TopicQuiz(ctx context.Context, userID uuid.UUID, topic string, count int) (*models.GeneratedQuiz, error)
	FlashFacts(ctx context.Context, topic string, count int) (*quizgen.Result, error)
	RequestDocumentQuiz(ctx context.Context, userID, documentID uuid.UUID, count int) (*models.Job, error)
	ListDocumentQuizzes(ctx context.Context, documentID uuid.UUID) ([]*models.GeneratedQuiz, error)
	GetQuiz(ctx context.Context, userID, id uuid.UUID) (*models.GeneratedQuiz, error)
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error)
	Activate(ctx context.Context, userID, quizID uuid.UUID) (*models.ActiveQuiz, error)
	ActiveQuiz(ctx context.Context, userID uuid.UUID) (*models.ActiveQuiz, error)
	StartSession(ctx context.Context, userID uuid.UUID) (*models.QuizSession, error)
	SaveAnswer(ctx context.Context, userID uuid.UUID, req models.SaveAnswerRequest) (*models.QuizSession, error)
	Submit(ctx context.Context, userID uuid.UUID) (*models.AttemptResult, error)
	Result(ctx context.Context, userID uuid.UUID) (*models.AttemptResult, error)
	ResultFeedback(ctx context.Context, userID uuid.UUID) (*models.AttemptResult, error)
	Attempts(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QuizAttempt, error)
}

type QuizHandler struct {
	quizzes QuizFlows
}

func NewQuizHandler(quizzes QuizFlows) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

func (h *QuizHandler) Topics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quizzes.Topics())
}

// GenerateFromTopic runs a topic quiz synchronously and returns it.
func (h *QuizHandler) GenerateFromTopic(w http.ResponseWriter, r *http.Request) {
	var req models.TopicQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.quizzes.TopicQuiz(r.Context(), middleware.GetUserID(r.Context()), req.Topic, req.Count)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) FlashFacts(w http.ResponseWriter, r *http.Request) {
	var req models.FlashFactsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.quizzes.FlashFacts(r.Context(), req.Topic, req.Count)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.FlashFactsResponse{FlashFacts: res.FlashFacts})
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	quiz, err := h.quizzes.GetQuiz(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	active, err := h.quizzes.Activate(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, active)
}

func (h *QuizHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.quizzes.GetJob(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// Attempts returns the user's quiz history, newest first.
func (h *QuizHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	attempts, err := h.quizzes.Attempts(r.Context(), middleware.GetUserID(r.Context()), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if attempts == nil {
		attempts = []*models.QuizAttempt{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}
