package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velardo/doccontrol/internal/core/domain"
)

// referenceTables whitelists the vocabularies this repository may touch;
// kind values never reach SQL unchecked.
var referenceTables = map[domain.ReferenceKind]string{
	domain.RefRevisionStatuses:     "revision_statuses",
	domain.RefRevisionDescriptions: "revision_descriptions",
	domain.RefRevisionSteps:        "revision_steps",
	domain.RefReviewCodes:          "review_codes",
}

type ReferenceRepository struct {
	db *sql.DB
}

func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func tableFor(kind domain.ReferenceKind) (string, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidInput, "reference lookup", fmt.Errorf("unknown kind %q", kind))
	}
	return table, nil
}

func (r *ReferenceRepository) GetByID(ctx context.Context, kind domain.ReferenceKind, id int64) (*domain.ReferenceEntry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, code, label, COALESCE(label_native, ''), is_active
FROM `+table+`
WHERE id = $1
`, id)
	return scanReference(row, kind, fmt.Sprintf("id=%d", id))
}

func (r *ReferenceRepository) GetByCode(ctx context.Context, kind domain.ReferenceKind, code string) (*domain.ReferenceEntry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, code, label, COALESCE(label_native, ''), is_active
FROM `+table+`
WHERE code = $1
`, code)
	return scanReference(row, kind, fmt.Sprintf("code=%s", code))
}

func (r *ReferenceRepository) ListActive(ctx context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, code, label, COALESCE(label_native, ''), is_active
FROM `+table+`
WHERE is_active = TRUE
ORDER BY id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	out := make([]domain.ReferenceEntry, 0)
	for rows.Next() {
		var entry domain.ReferenceEntry
		if err := rows.Scan(&entry.ID, &entry.Code, &entry.Label, &entry.LabelNative, &entry.IsActive); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}

// Upsert inserts or refreshes a vocabulary row by code. Used by the seed
// loader at startup, never by request handling.
func (r *ReferenceRepository) Upsert(ctx context.Context, kind domain.ReferenceKind, entry domain.ReferenceEntry) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO `+table+` (code, label, label_native, is_active)
VALUES ($1, $2, $3, $4)
ON CONFLICT (code) DO UPDATE
SET label = EXCLUDED.label, label_native = EXCLUDED.label_native, is_active = EXCLUDED.is_active
`, entry.Code, entry.Label, entry.LabelNative, entry.IsActive)
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", kind, entry.Code, err)
	}
	return nil
}

// ResolveStatusRegistry resolves the revision status rows the core depends
// on. Startup fails fast when any is missing instead of assuming row ids.
func (r *ReferenceRepository) ResolveStatusRegistry(ctx context.Context) (domain.StatusRegistry, error) {
	var reg domain.StatusRegistry
	for _, pair := range []struct {
		status domain.RevisionStatus
		target *int64
	}{
		{domain.RevisionActive, &reg.ActiveID},
		{domain.RevisionSuperseded, &reg.SupersededID},
		{domain.RevisionCancelled, &reg.CancelledID},
	} {
		entry, err := r.GetByCode(ctx, domain.RefRevisionStatuses, string(pair.status))
		if err != nil {
			return domain.StatusRegistry{}, fmt.Errorf("resolve status %q: %w", pair.status, err)
		}
		*pair.target = entry.ID
	}
	return reg, nil
}

func scanReference(row *sql.Row, kind domain.ReferenceKind, selector string) (*domain.ReferenceEntry, error) {
	var entry domain.ReferenceEntry
	err := row.Scan(&entry.ID, &entry.Code, &entry.Label, &entry.LabelNative, &entry.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get reference", fmt.Errorf("%s %s", kind, selector))
		}
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}
	return &entry, nil
}
