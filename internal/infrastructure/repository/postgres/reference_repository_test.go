package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/velardo/doccontrol/internal/core/domain"
)

func referenceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "label", "label_native", "is_active"})
}

func TestReferenceRepositoryGetByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewReferenceRepository(db)
	mock.ExpectQuery("FROM review_codes").
		WithArgs("A").
		WillReturnRows(referenceRows().AddRow(int64(100), "A", "Approved", "", true))

	entry, err := repo.GetByCode(context.Background(), domain.RefReviewCodes, "A")
	if err != nil {
		t.Fatalf("GetByCode() error = %v", err)
	}
	if entry.ID != 100 || entry.Code != "A" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReferenceRepositoryRejectsUnknownKind(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewReferenceRepository(db)
	_, err = repo.GetByCode(context.Background(), domain.ReferenceKind("users; DROP TABLE users"), "A")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}

func TestReferenceRepositoryResolveStatusRegistry(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewReferenceRepository(db)
	mock.ExpectQuery("FROM revision_statuses").
		WithArgs("active").
		WillReturnRows(referenceRows().AddRow(int64(1), "active", "Active", "", true))
	mock.ExpectQuery("FROM revision_statuses").
		WithArgs("superseded").
		WillReturnRows(referenceRows().AddRow(int64(2), "superseded", "Superseded", "", true))
	mock.ExpectQuery("FROM revision_statuses").
		WithArgs("cancelled").
		WillReturnRows(referenceRows().AddRow(int64(3), "cancelled", "Cancelled", "", true))

	reg, err := repo.ResolveStatusRegistry(context.Background())
	if err != nil {
		t.Fatalf("ResolveStatusRegistry() error = %v", err)
	}
	if reg.ActiveID != 1 || reg.SupersededID != 2 || reg.CancelledID != 3 {
		t.Fatalf("unexpected registry: %+v", reg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReferenceRepositoryResolveStatusRegistryFailsFastOnMissingStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewReferenceRepository(db)
	mock.ExpectQuery("FROM revision_statuses").
		WithArgs("active").
		WillReturnRows(referenceRows().AddRow(int64(1), "active", "Active", "", true))
	mock.ExpectQuery("FROM revision_statuses").
		WithArgs("superseded").
		WillReturnRows(referenceRows())

	_, err = repo.ResolveStatusRegistry(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing status row")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Fatalf("error should name the missing status, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
