package seed

import (
	"context"
	"log/slog"
	"testing"

	"github.com/velardo/doccontrol/internal/core/domain"
)

const sampleVocabulary = `
statuses:
  - code: active
    label: Active
  - code: superseded
    label: Superseded
  - code: cancelled
    label: Cancelled
review_codes:
  - code: A
    label: Approved
  - code: R
    label: Rejected
    inactive: true
steps:
  - code: "01"
    label: First issue
`

type upserterFake struct {
	entries map[domain.ReferenceKind][]domain.ReferenceEntry
}

func (f *upserterFake) Upsert(_ context.Context, kind domain.ReferenceKind, entry domain.ReferenceEntry) error {
	if f.entries == nil {
		f.entries = make(map[domain.ReferenceKind][]domain.ReferenceEntry)
	}
	f.entries[kind] = append(f.entries[kind], entry)
	return nil
}

func TestParseVocabulary(t *testing.T) {
	vocab, err := ParseVocabulary([]byte(sampleVocabulary))
	if err != nil {
		t.Fatalf("ParseVocabulary() error = %v", err)
	}
	if len(vocab.Statuses) != 3 || len(vocab.ReviewCodes) != 2 || len(vocab.Steps) != 1 {
		t.Fatalf("unexpected vocabulary: %+v", vocab)
	}
	if !vocab.ReviewCodes[1].Inactive {
		t.Fatalf("expected R to be inactive")
	}
}

func TestParseVocabularyRejectsEmptyCode(t *testing.T) {
	_, err := ParseVocabulary([]byte("statuses:\n  - label: Nameless\n"))
	if err == nil {
		t.Fatalf("expected error for entry without code")
	}
}

func TestApplyUpsertsAllEntries(t *testing.T) {
	vocab, err := ParseVocabulary([]byte(sampleVocabulary))
	if err != nil {
		t.Fatalf("ParseVocabulary() error = %v", err)
	}

	store := &upserterFake{}
	if err := Apply(context.Background(), store, vocab, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(store.entries[domain.RefRevisionStatuses]) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(store.entries[domain.RefRevisionStatuses]))
	}
	codes := store.entries[domain.RefReviewCodes]
	if len(codes) != 2 {
		t.Fatalf("expected 2 review codes, got %d", len(codes))
	}
	for _, entry := range codes {
		if entry.Code == "R" && entry.IsActive {
			t.Fatalf("inactive entry must map to IsActive=false")
		}
	}
}
