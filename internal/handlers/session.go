package handlers

import (
	"net/http"

	"quizwhiz-backend/internal/middleware"
	"quizwhiz-backend/internal/models"
)

// Session endpoints operate on the caller's active quiz, the quiz being
// played and the last result.

func (h *QuizHandler) ActiveQuiz(w http.ResponseWriter, r *http.Request) {
	active, err := h.quizzes.ActiveQuiz(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, active)
}

// ActiveFlashFacts returns the flash facts generated with the active quiz.
func (h *QuizHandler) ActiveFlashFacts(w http.ResponseWriter, r *http.Request) {
	active, err := h.quizzes.ActiveQuiz(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.FlashFactsResponse{
		Title:      active.Title,
		FlashFacts: active.FlashFacts,
	})
}

func (h *QuizHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.quizzes.StartSession(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (h *QuizHandler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.SaveAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.quizzes.SaveAnswer(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.quizzes.Submit(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.quizzes.Result(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) ResultFeedback(w http.ResponseWriter, r *http.Request) {
	result, err := h.quizzes.ResultFeedback(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
