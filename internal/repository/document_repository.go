package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dextryayers/rujukan-jatim/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

const documentColumns = `id, title, description, category, object_key, file_name, mime_type, file_size, file_url, published_at, created_by, created_at, updated_at`

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func scanDocument(row pgx.Row) (models.Document, error) {
	var doc models.Document
	if err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.Category,
		&doc.ObjectKey,
		&doc.FileName,
		&doc.MimeType,
		&doc.FileSize,
		&doc.FileURL,
		&doc.PublishedAt,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Document{}, ErrDocumentNotFound
		}
		return models.Document{}, err
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	const query = `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY published_at DESC NULLS LAST, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (models.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.pool.QueryRow(ctx, query, id))
}

func (r *DocumentRepository) Create(ctx context.Context, doc models.Document) error {
	const query = `
		INSERT INTO documents (
			id, title, description, category, object_key, file_name, mime_type, file_size,
			file_url, published_at, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Category,
		doc.ObjectKey,
		doc.FileName,
		doc.MimeType,
		doc.FileSize,
		doc.FileURL,
		doc.PublishedAt,
		doc.CreatedBy,
	)
	return err
}

func (r *DocumentRepository) Update(ctx context.Context, doc models.Document) error {
	const query = `
		UPDATE documents
		SET title = $2, description = $3, category = $4, object_key = $5, file_name = $6,
		    mime_type = $7, file_size = $8, file_url = $9, published_at = $10, updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Category,
		doc.ObjectKey,
		doc.FileName,
		doc.MimeType,
		doc.FileSize,
		doc.FileURL,
		doc.PublishedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
