package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"quizwhiz-backend/internal/middleware"
	"quizwhiz-backend/internal/models"
	"quizwhiz-backend/internal/services"
)

// maxUploadMemory bounds the in-memory part of a multipart upload; the rest
// spills to temporary files.
const maxUploadMemory = 32 << 20

type DocumentLibrary interface {
	List(ctx context.Context) ([]*models.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Upload(ctx context.Context, title string, files []services.UploadFile, uploadedBy uuid.UUID) (*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentHandler struct {
	docs    DocumentLibrary
	quizzes QuizFlows
}

func NewDocumentHandler(docs DocumentLibrary, quizzes QuizFlows) *DocumentHandler {
	return &DocumentHandler{docs: docs, quizzes: quizzes}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docs.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	quizzes, err := h.quizzes.ListDocumentQuizzes(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if quizzes == nil {
		quizzes = []*models.GeneratedQuiz{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc,
		"quizzes":  quizzes,
	})
}

// Upload accepts a multipart form with a "title" field and one or more
// "files" parts.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxFilesPerBatch*services.MaxFileSize+(1<<20))
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart upload", r))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) > services.MaxFilesPerBatch {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"files": "Too many files"}, r))
		return
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unreadable file "+fh.Filename, r))
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, services.MaxFileSize+1))
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unreadable file "+fh.Filename, r))
			return
		}
		files = append(files, services.UploadFile{Name: fh.Filename, Data: data})
	}

	doc, err := h.docs.Upload(r.Context(), r.FormValue("title"), files, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.docs.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateQuiz queues a quiz generation from the document batch.
func (h *DocumentHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req models.DocumentQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := h.quizzes.RequestDocumentQuiz(r.Context(), middleware.GetUserID(r.Context()), id, req.Count)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
		"status": job.Status,
	})
}
