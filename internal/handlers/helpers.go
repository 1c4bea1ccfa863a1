package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizwhiz-backend/internal/logger"
	"quizwhiz-backend/internal/middleware"
	"quizwhiz-backend/internal/models"
	"quizwhiz-backend/internal/quizgen"
	"quizwhiz-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return errorRespWithFields(code, message, nil, r)
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: middleware.GetRequestID(r.Context()),
		},
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return false
	}
	return true
}

func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid "+param, r))
		return uuid.Nil, false
	}
	return id, true
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid    *quizgen.InvalidRequestError
		unanswered *services.UnansweredError
	)

	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
		return
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
		return
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", e.Message, r))
		return
	case *services.ForbiddenError:
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", e.Message, r))
		return
	}

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields(quizgen.CodeInvalidRequest, invalid.Error(),
			map[string]string{invalid.Field: invalid.Message}, r))
	case errors.Is(err, quizgen.ErrServiceUnavailable):
		logger.WithContext(r.Context()).WithError(err).Warn("generation service unavailable")
		writeJSON(w, http.StatusServiceUnavailable, errorResp(quizgen.CodeServiceUnavailable,
			"The generation service is unavailable. Please retry later.", r))
	case errors.Is(err, quizgen.ErrNoUsableContent):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp(quizgen.CodeNoUsableContent,
			"No usable questions could be produced. Try a different document or topic.", r))
	case errors.As(err, &unanswered):
		fields := make(map[string]string, len(unanswered.Indexes))
		for _, i := range unanswered.Indexes {
			fields["answers["+strconv.Itoa(i)+"]"] = "Question not answered"
		}
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("UNANSWERED_QUESTIONS", unanswered.Error(), fields, r))
	case errors.Is(err, services.ErrNoSession):
		writeJSON(w, http.StatusNotFound, errorResp("NO_SESSION", "Nothing to resume. Pick or generate a quiz first.", r))
	case errors.Is(err, pgx.ErrNoRows):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Resource not found", r))
	default:
		logger.WithContext(r.Context()).WithError(err).Error("unhandled service error")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
