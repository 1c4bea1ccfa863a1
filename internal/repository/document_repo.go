package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizwhiz-backend/internal/models"
)

type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

// Create inserts a batch and its files in one transaction. IDs are assigned
// here; d.Files[i].StoragePath must already be set.
func (r *DocumentRepo) Create(ctx context.Context, d *models.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO documents (id, title, file_sources, page_count, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		d.ID, d.Title, d.FileSources, d.PageCount, d.UploadedBy,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range d.Files {
		f := &d.Files[i]
		f.ID = uuid.New()
		f.DocumentID = d.ID
		batch.Queue(
			`INSERT INTO document_files (id, document_id, position, file_name, mime_type, storage_path, size_bytes, page_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			f.ID, f.DocumentID, i, f.FileName, f.MIMEType, f.StoragePath, f.SizeBytes, f.PageCount,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert files: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID returns the batch with its files in upload order.
func (r *DocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	d := &models.Document{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, file_sources, page_count, uploaded_by, created_at FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.Title, &d.FileSources, &d.PageCount, &d.UploadedBy, &d.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, file_name, mime_type, storage_path, size_bytes, page_count
		 FROM document_files WHERE document_id = $1 ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f models.DocumentFile
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.FileName, &f.MIMEType, &f.StoragePath, &f.SizeBytes, &f.PageCount); err != nil {
			return nil, err
		}
		d.Files = append(d.Files, f)
	}
	return d, rows.Err()
}

// List returns the library, newest first, without file rows.
func (r *DocumentRepo) List(ctx context.Context) ([]*models.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, file_sources, page_count, uploaded_by, created_at
		 FROM documents ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		d := &models.Document{}
		if err := rows.Scan(&d.ID, &d.Title, &d.FileSources, &d.PageCount, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes the batch and returns the storage paths of its files so the
// caller can remove the blobs.
func (r *DocumentRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`DELETE FROM document_files WHERE document_id = $1 RETURNING storage_path`, id,
	)
	if err != nil {
		return nil, err
	}
	paths, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return paths, nil
}
