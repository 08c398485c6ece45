package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velardo/doccontrol/internal/core/domain"
	"github.com/velardo/doccontrol/internal/core/ports"
)

// revisionLockClass namespaces the per-document advisory lock keys so they
// cannot collide with other advisory lock users on the same database.
const revisionLockClass = int64(4401) << 32

type RevisionRepository struct {
	db       *sql.DB
	statuses domain.StatusRegistry
}

func NewRevisionRepository(db *sql.DB, statuses domain.StatusRegistry) *RevisionRepository {
	return &RevisionRepository{db: db, statuses: statuses}
}

// InDocumentTx runs fn inside a serializable transaction holding an advisory
// lock on the document, so concurrent lifecycle operations on one document
// are strictly ordered. Any error aborts the whole transaction.
func (r *RevisionRepository) InDocumentTx(ctx context.Context, documentID int64, fn func(ctx context.Context, tx ports.RevisionTx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin document tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, revisionLockClass|documentID); err != nil {
		return fmt.Errorf("acquire document lock: %w", err)
	}

	if err := fn(ctx, &revisionTx{tx: tx, statuses: r.statuses}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document tx: %w", err)
	}
	return nil
}

const revisionColumns = `id, document_id, sequence_number, status_id, description_id, step_id, content_ref, uploader_id, remarks, is_deleted, deleted_via_document, created_at`

func (r *RevisionRepository) GetByID(ctx context.Context, revisionID int64) (*domain.Revision, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+revisionColumns+`
FROM document_revisions
WHERE id = $1
`, revisionID)

	rev, err := scanRevision(row, r.statuses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get revision", fmt.Errorf("id=%d", revisionID))
		}
		return nil, fmt.Errorf("get revision by id: %w", err)
	}
	return rev, nil
}

func (r *RevisionRepository) ListByDocument(ctx context.Context, documentID int64, includeDeleted bool) ([]domain.Revision, error) {
	query := `
SELECT ` + revisionColumns + `
FROM document_revisions
WHERE document_id = $1
`
	if !includeDeleted {
		query += "AND is_deleted = FALSE\n"
	}
	query += "ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Revision, 0)
	for rows.Next() {
		rev, err := scanRevision(rows, r.statuses)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return out, nil
}

func (r *RevisionRepository) SetDeleted(ctx context.Context, revisionID int64, deleted bool) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE document_revisions
SET is_deleted = $2, deleted_via_document = FALSE
WHERE id = $1
`, revisionID, deleted)
	if err != nil {
		return fmt.Errorf("set revision deleted: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set revision deleted rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "set revision deleted", fmt.Errorf("id=%d", revisionID))
	}
	return nil
}

// ListActiveByProject returns the transmittal view of a project: every
// non-deleted document's active revision joined with its workflow code.
func (r *RevisionRepository) ListActiveByProject(ctx context.Context, projectID int64) ([]domain.TransmittalLine, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT d.number, d.title, rev.sequence_number, COALESCE(rd.code, ''), COALESCE(rs.code, '')
FROM document_revisions rev
JOIN documents d ON d.id = rev.document_id
LEFT JOIN revision_descriptions rd ON rd.id = rev.description_id
LEFT JOIN revision_steps rs ON rs.id = rev.step_id
WHERE d.project_id = $1
  AND d.is_deleted = FALSE
  AND rev.is_deleted = FALSE
  AND rev.status_id = $2
ORDER BY d.number ASC
`, projectID, r.statuses.ActiveID)
	if err != nil {
		return nil, fmt.Errorf("list active revisions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TransmittalLine, 0)
	for rows.Next() {
		var line domain.TransmittalLine
		if err := rows.Scan(&line.DocumentNumber, &line.DocumentTitle, &line.SequenceNumber, &line.DescriptionCode, &line.StepCode); err != nil {
			return nil, fmt.Errorf("scan transmittal line: %w", err)
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transmittal lines: %w", err)
	}
	return out, nil
}

// revisionTx implements ports.RevisionTx against an open transaction.
type revisionTx struct {
	tx       *sql.Tx
	statuses domain.StatusRegistry
}

func (t *revisionTx) LatestNonDeleted(ctx context.Context, documentID int64) (*domain.Revision, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT `+revisionColumns+`
FROM document_revisions
WHERE document_id = $1 AND is_deleted = FALSE
ORDER BY created_at DESC, id DESC
LIMIT 1
FOR UPDATE
`, documentID)

	rev, err := scanRevision(row, t.statuses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest revision: %w", err)
	}
	return rev, nil
}

func (t *revisionTx) LatestActive(ctx context.Context, documentID int64) (*domain.Revision, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT `+revisionColumns+`
FROM document_revisions
WHERE document_id = $1 AND is_deleted = FALSE AND status_id = $2
ORDER BY created_at DESC, id DESC
LIMIT 1
FOR UPDATE
`, documentID, t.statuses.ActiveID)

	rev, err := scanRevision(row, t.statuses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest active revision: %w", err)
	}
	return rev, nil
}

func (t *revisionTx) Insert(ctx context.Context, rev *domain.Revision) error {
	statusID, ok := t.statuses.IDFor(rev.Status)
	if !ok {
		return fmt.Errorf("insert revision: unknown status %q", rev.Status)
	}

	err := t.tx.QueryRowContext(ctx, `
INSERT INTO document_revisions (
	document_id, sequence_number, status_id, description_id, step_id, content_ref, uploader_id, remarks, is_deleted, deleted_via_document, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE,FALSE,$9)
RETURNING id
`,
		rev.DocumentID, rev.SequenceNumber, statusID, rev.DescriptionID, rev.StepID,
		rev.ContentRef, rev.UploaderID, rev.Remarks, rev.CreatedAt,
	).Scan(&rev.ID)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

func (t *revisionTx) UpdateStatus(ctx context.Context, revisionID int64, status domain.RevisionStatus) error {
	statusID, ok := t.statuses.IDFor(status)
	if !ok {
		return fmt.Errorf("update revision status: unknown status %q", status)
	}

	result, err := t.tx.ExecContext(ctx, `
UPDATE document_revisions
SET status_id = $2
WHERE id = $1
`, revisionID, statusID)
	if err != nil {
		return fmt.Errorf("update revision status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update revision status rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update revision status", fmt.Errorf("id=%d", revisionID))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRevision(row rowScanner, statuses domain.StatusRegistry) (*domain.Revision, error) {
	var rev domain.Revision
	var statusID int64
	err := row.Scan(
		&rev.ID,
		&rev.DocumentID,
		&rev.SequenceNumber,
		&statusID,
		&rev.DescriptionID,
		&rev.StepID,
		&rev.ContentRef,
		&rev.UploaderID,
		&rev.Remarks,
		&rev.IsDeleted,
		&rev.DeletedViaDocument,
		&rev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	status, ok := statuses.StatusFor(statusID)
	if !ok {
		return nil, fmt.Errorf("unknown revision status id %d", statusID)
	}
	rev.Status = status
	return &rev, nil
}
