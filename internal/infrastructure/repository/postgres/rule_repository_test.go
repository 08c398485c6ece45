package postgres

import (
	"context"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/velardo/doccontrol/internal/core/domain"
)

func ruleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "preset_id", "document_type_id", "current_description_id", "current_step_id",
		"operator", "review_code_id", "review_code_list", "priority",
		"next_description_id", "next_step_id", "action_on_fail",
	})
}

func TestRuleRepositoryListRulesDecodesReviewCodeList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRuleRepository(db, slog.New(slog.DiscardHandler))
	rows := ruleRows().
		AddRow(int64(1), int64(10), nil, int64(2), int64(20),
			"in_list", nil, []byte(`["A","A*"]`), 10, nil, nil, "increment_number").
		AddRow(int64(2), int64(10), nil, int64(2), int64(20),
			"not_in_list", nil, []byte(`{broken`), 100, nil, nil, "increment_number").
		AddRow(int64(3), int64(10), nil, int64(2), int64(20),
			"equals", int64(101), nil, 100, int64(3), int64(21), "no_action")

	mock.ExpectQuery("FROM workflow_preset_rules").
		WithArgs(int64(10)).
		WillReturnRows(rows)

	rules, err := repo.ListRules(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRules() error = %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if _, ok := rules[0].ReviewCodes["A*"]; !ok {
		t.Fatalf("expected decoded review code set, got %v", rules[0].ReviewCodes)
	}
	if rules[1].ReviewCodes != nil {
		t.Fatalf("malformed list must decode to nil, got %v", rules[1].ReviewCodes)
	}
	if rules[2].ReviewCodes != nil {
		t.Fatalf("absent list must decode to nil, got %v", rules[2].ReviewCodes)
	}
	if rules[2].Operator != domain.OperatorEquals || rules[2].ReviewCodeID == nil {
		t.Fatalf("unexpected equals rule: %+v", rules[2])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRuleRepositoryGetPresetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRuleRepository(db, slog.New(slog.DiscardHandler))
	mock.ExpectQuery("FROM workflow_presets").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "is_global", "created_by", "created_at"}))

	_, err = repo.GetPreset(context.Background(), 42)
	if !domain.IsKind(err, domain.ErrPresetNotFound) {
		t.Fatalf("expected preset-not-found error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRuleRepositoryListSequencesKeepsAuthoredOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRuleRepository(db, slog.New(slog.DiscardHandler))
	rows := sqlmock.NewRows([]string{"id", "preset_id", "sequence_order", "description_id", "step_id", "is_final"}).
		AddRow(int64(1), int64(10), 1, int64(2), int64(20), false).
		AddRow(int64(2), int64(10), 2, int64(2), int64(21), true)

	mock.ExpectQuery("FROM workflow_preset_sequences").
		WithArgs(int64(10)).
		WillReturnRows(rows)

	seqs, err := repo.ListSequences(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSequences() error = %v", err)
	}
	if len(seqs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(seqs))
	}
	if seqs[0].Order != 1 || !seqs[1].IsFinal {
		t.Fatalf("unexpected sequence entries: %+v", seqs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
