package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded batch of PDF files that quizzes are generated from.
type Document struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	FileSources []string       `json:"file_sources"`
	PageCount   int            `json:"page_count"`
	UploadedBy  *uuid.UUID     `json:"uploaded_by"`
	CreatedAt   time.Time      `json:"created_at"`
	Files       []DocumentFile `json:"files,omitempty"`
}

type DocumentFile struct {
	ID          uuid.UUID `json:"id"`
	DocumentID  uuid.UUID `json:"document_id"`
	FileName    string    `json:"file_name"`
	MIMEType    string    `json:"mime_type"`
	StoragePath string    `json:"-"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   int       `json:"page_count"`
}
