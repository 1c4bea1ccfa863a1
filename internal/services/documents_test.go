package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizwhiz-backend/internal/models"
)

type stubDocumentRepo struct {
	docs    map[uuid.UUID]*models.Document
	created int
}

func (r *stubDocumentRepo) Create(_ context.Context, d *models.Document) error {
	r.created++
	r.docs[d.ID] = d
	return nil
}

func (r *stubDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	if d, ok := r.docs[id]; ok {
		return d, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubDocumentRepo) List(context.Context) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range r.docs {
		out = append(out, d)
	}
	return out, nil
}

func (r *stubDocumentRepo) Delete(_ context.Context, id uuid.UUID) ([]string, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(r.docs, id)
	var paths []string
	for _, f := range d.Files {
		paths = append(paths, f.StoragePath)
	}
	return paths, nil
}

func newDocFixture(t *testing.T) (*DocumentService, *stubDocumentRepo, string) {
	dir := t.TempDir()
	repo := &stubDocumentRepo{docs: map[uuid.UUID]*models.Document{}}
	return NewDocumentService(repo, NewPDFService(), dir), repo, dir
}

func TestValidateUpload(t *testing.T) {
	svc, _, _ := newDocFixture(t)
	notPDF := UploadFile{Name: "notes.pdf", Data: []byte("plain text")}

	tests := []struct {
		name   string
		title  string
		files  []UploadFile
		fields []string
	}{
		{"missing title and files", "  ", nil, []string{"title", "files"}},
		{"title too long", strings.Repeat("é", MaxTitleLength+1), []UploadFile{notPDF}, []string{"title", "files[0]"}},
		{"too many files", "Cours", make([]UploadFile, MaxFilesPerBatch+1), []string{"files"}},
		{"wrong extension", "Cours", []UploadFile{{Name: "notes.docx", Data: []byte("%PDF-1.4")}}, []string{"files[0]"}},
		{"empty file", "Cours", []UploadFile{{Name: "vide.pdf"}}, []string{"files[0]"}},
		{"too large", "Cours", []UploadFile{{Name: "big.pdf", Data: make([]byte, MaxFileSize+1)}}, []string{"files[0]"}},
		{"not a pdf", "Cours", []UploadFile{notPDF}, []string{"files[0]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateUpload(tt.title, tt.files)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			for _, f := range tt.fields {
				assert.Contains(t, ve.Fields, f)
			}
		})
	}
}

func TestUpload_InvalidStoresNothing(t *testing.T) {
	svc, repo, dir := newDocFixture(t)

	_, err := svc.Upload(context.Background(), "Cours", []UploadFile{{Name: "x.pdf", Data: []byte("nope")}}, uuid.New())

	require.Error(t, err)
	assert.Zero(t, repo.created)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestDocumentService_NotFound(t *testing.T) {
	svc, _, _ := newDocFixture(t)
	var nf *NotFoundError

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.As(err, &nf))

	err = svc.Delete(context.Background(), uuid.New())
	assert.True(t, errors.As(err, &nf))
}

func TestDocumentService_LoadAndDelete(t *testing.T) {
	svc, repo, dir := newDocFixture(t)
	id := uuid.New()
	rel := filepath.Join("documents", id.String(), "00_cours.pdf")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.Dir(rel)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, rel), []byte("%PDF-1.4 data"), 0o644))

	doc := &models.Document{
		ID:    id,
		Title: "Cours",
		Files: []models.DocumentFile{{FileName: "cours.pdf", MIMEType: "application/pdf", StoragePath: rel}},
	}
	repo.docs[id] = doc

	loaded, err := svc.Load(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "cours.pdf", loaded[0].Name)
	assert.Equal(t, []byte("%PDF-1.4 data"), loaded[0].Data)

	require.NoError(t, svc.Delete(context.Background(), id))
	_, err = os.Stat(filepath.Join(dir, "documents", id.String()))
	assert.True(t, os.IsNotExist(err))
}

func TestSafeFileName(t *testing.T) {
	tests := map[string]string{
		"cours.pdf":            "cours.pdf",
		"../../etc/passwd.pdf": "passwd.pdf",
		"Économie 2024.pdf":    "conomie_2024.pdf",
		"...":                  "document.pdf",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeFileName(in), in)
	}
}
