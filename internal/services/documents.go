package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizwhiz-backend/internal/logger"
	"quizwhiz-backend/internal/models"
	"quizwhiz-backend/internal/quizgen"
)

const (
	MaxFilesPerBatch = 10
	MaxFileSize      = 25 << 20
	MaxTitleLength   = 200
)

// UploadFile is one file of a multipart upload, already read into memory.
type UploadFile struct {
	Name string
	Data []byte
}

type DocumentRepository interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

// DocumentService stores PDF batches: metadata in PostgreSQL, bytes on the
// local filesystem under storagePath.
type DocumentService struct {
	repo        DocumentRepository
	pdf         *PDFService
	storagePath string
}

func NewDocumentService(repo DocumentRepository, pdf *PDFService, storagePath string) *DocumentService {
	return &DocumentService{repo: repo, pdf: pdf, storagePath: storagePath}
}

// ValidateUpload checks the batch limits and that every file is a readable
// PDF. It returns the page count of each file.
func (s *DocumentService) ValidateUpload(title string, files []UploadFile) ([]int, error) {
	fields := make(map[string]string)

	title = strings.TrimSpace(title)
	switch {
	case title == "":
		fields["title"] = "Title is required"
	case len([]rune(title)) > MaxTitleLength:
		fields["title"] = fmt.Sprintf("Title must be at most %d characters", MaxTitleLength)
	}

	switch {
	case len(files) == 0:
		fields["files"] = "At least one PDF file is required"
	case len(files) > MaxFilesPerBatch:
		fields["files"] = fmt.Sprintf("At most %d files per upload", MaxFilesPerBatch)
	}

	pages := make([]int, len(files))
	if len(files) <= MaxFilesPerBatch {
		for i, f := range files {
			key := fmt.Sprintf("files[%d]", i)
			switch {
			case !strings.EqualFold(filepath.Ext(f.Name), ".pdf"):
				fields[key] = f.Name + ": only .pdf files are accepted"
			case len(f.Data) == 0:
				fields[key] = f.Name + ": file is empty"
			case len(f.Data) > MaxFileSize:
				fields[key] = fmt.Sprintf("%s: file exceeds %d MB", f.Name, MaxFileSize>>20)
			default:
				n, err := s.pdf.Inspect(f.Data)
				if err != nil {
					fields[key] = f.Name + ": not a readable PDF"
					continue
				}
				pages[i] = n
			}
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return pages, nil
}

// Upload validates, stores the files and records the batch.
func (s *DocumentService) Upload(ctx context.Context, title string, files []UploadFile, uploadedBy uuid.UUID) (*models.Document, error) {
	pages, err := s.ValidateUpload(title, files)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		FileSources: make([]string, len(files)),
		Files:       make([]models.DocumentFile, len(files)),
	}
	if uploadedBy != uuid.Nil {
		doc.UploadedBy = &uploadedBy
	}

	dir := filepath.Join("documents", doc.ID.String())
	if err := os.MkdirAll(filepath.Join(s.storagePath, dir), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	for i, f := range files {
		rel := filepath.Join(dir, fmt.Sprintf("%02d_%s", i, safeFileName(f.Name)))
		if err := os.WriteFile(filepath.Join(s.storagePath, rel), f.Data, 0o644); err != nil {
			s.removeDir(dir)
			return nil, fmt.Errorf("store %s: %w", f.Name, err)
		}
		doc.FileSources[i] = f.Name
		doc.PageCount += pages[i]
		doc.Files[i] = models.DocumentFile{
			FileName:    f.Name,
			MIMEType:    "application/pdf",
			StoragePath: rel,
			SizeBytes:   int64(len(f.Data)),
			PageCount:   pages[i],
		}
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		s.removeDir(dir)
		return nil, err
	}

	logger.WithContext(ctx).WithField("document_id", doc.ID).
		WithField("files", len(files)).Info("document batch uploaded")
	return doc, nil
}

func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Document not found"}
	}
	return doc, err
}

func (s *DocumentService) List(ctx context.Context) ([]*models.Document, error) {
	return s.repo.List(ctx)
}

// Delete removes the batch and its stored files.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	paths, err := s.repo.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Message: "Document not found"}
	}
	if err != nil {
		return err
	}
	for _, p := range paths {
		os.Remove(filepath.Join(s.storagePath, p))
	}
	s.removeDir(filepath.Join("documents", id.String()))
	return nil
}

// Load reads the stored bytes of every file of doc, in upload order.
func (s *DocumentService) Load(ctx context.Context, doc *models.Document) ([]quizgen.Document, error) {
	out := make([]quizgen.Document, 0, len(doc.Files))
	for _, f := range doc.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.storagePath, f.StoragePath))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.FileName, err)
		}
		out = append(out, quizgen.Document{Name: f.FileName, MIMEType: f.MIMEType, Data: data})
	}
	return out, nil
}

// ContextExcerpt returns up to maxChars of plain text from the batch, used to
// ground feedback explanations. Failures yield whatever text was gathered.
func (s *DocumentService) ContextExcerpt(ctx context.Context, doc *models.Document, maxChars int) string {
	var b strings.Builder
	for _, f := range doc.Files {
		remaining := maxChars - len([]rune(b.String()))
		if remaining <= 0 {
			break
		}
		text, err := s.pdf.ExtractTextFromPath(filepath.Join(s.storagePath, f.StoragePath), remaining)
		if err != nil {
			logger.WithContext(ctx).WithError(err).WithField("file", f.FileName).Debug("no text for feedback context")
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return truncateRunes(b.String(), maxChars)
}

func (s *DocumentService) removeDir(rel string) {
	os.RemoveAll(filepath.Join(s.storagePath, rel))
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safeFileName(name string) string {
	base := filepath.Base(name)
	base = unsafeFileChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "document.pdf"
	}
	return base
}
