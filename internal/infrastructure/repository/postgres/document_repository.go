package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velardo/doccontrol/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	err := r.db.QueryRowContext(ctx, `
INSERT INTO documents (number, title, project_id, discipline_id, type_id, language_id, is_deleted, created_at)
VALUES ($1,$2,$3,$4,$5,$6,FALSE,$7)
RETURNING id
`, doc.Number, doc.Title, doc.ProjectID, doc.DisciplineID, doc.TypeID, doc.LanguageID, doc.CreatedAt).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, documentID int64) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, number, title, project_id, discipline_id, type_id, language_id, is_deleted, created_at
FROM documents
WHERE id = $1
`, documentID)

	var doc domain.Document
	err := row.Scan(&doc.ID, &doc.Number, &doc.Title, &doc.ProjectID, &doc.DisciplineID, &doc.TypeID, &doc.LanguageID, &doc.IsDeleted, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id=%d", documentID))
		}
		return nil, fmt.Errorf("get document by id: %w", err)
	}
	return &doc, nil
}

// SoftDelete marks the document and cascades to its non-deleted revisions in
// the same transaction, tagging cascaded rows so Restore can tell them apart
// from independently deleted ones.
func (r *DocumentRepository) SoftDelete(ctx context.Context, documentID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE documents
SET is_deleted = TRUE
WHERE id = $1 AND is_deleted = FALSE
`, documentID)
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete document rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "soft delete document", fmt.Errorf("id=%d", documentID))
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE document_revisions
SET is_deleted = TRUE, deleted_via_document = TRUE
WHERE document_id = $1 AND is_deleted = FALSE
`, documentID); err != nil {
		return fmt.Errorf("cascade delete revisions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// Restore clears the document flag and only those revision flags that were
// set by the delete cascade.
func (r *DocumentRepository) Restore(ctx context.Context, documentID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE documents
SET is_deleted = FALSE
WHERE id = $1 AND is_deleted = TRUE
`, documentID)
	if err != nil {
		return fmt.Errorf("restore document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("restore document rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "restore document", fmt.Errorf("id=%d", documentID))
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE document_revisions
SET is_deleted = FALSE, deleted_via_document = FALSE
WHERE document_id = $1 AND deleted_via_document = TRUE
`, documentID); err != nil {
		return fmt.Errorf("cascade restore revisions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore tx: %w", err)
	}
	return nil
}
