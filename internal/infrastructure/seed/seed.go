package seed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/velardo/doccontrol/internal/core/domain"
)

// Vocabulary is the reference data shipped alongside a deployment: revision
// statuses, descriptions, steps and review codes, keyed by code.
type Vocabulary struct {
	Statuses     []Entry `yaml:"statuses"`
	Descriptions []Entry `yaml:"descriptions"`
	Steps        []Entry `yaml:"steps"`
	ReviewCodes  []Entry `yaml:"review_codes"`
}

type Entry struct {
	Code        string `yaml:"code"`
	Label       string `yaml:"label"`
	LabelNative string `yaml:"label_native"`
	Inactive    bool   `yaml:"inactive"`
}

// Upserter is the subset of the reference repository the seeder needs.
type Upserter interface {
	Upsert(ctx context.Context, kind domain.ReferenceKind, entry domain.ReferenceEntry) error
}

// ParseVocabulary decodes a vocabulary from YAML bytes.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Vocabulary{}, fmt.Errorf("seed: vocabulary payload is empty")
	}
	var vocab Vocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return Vocabulary{}, fmt.Errorf("seed: decode vocabulary: %w", err)
	}
	for section, entries := range map[string][]Entry{
		"statuses":     vocab.Statuses,
		"descriptions": vocab.Descriptions,
		"steps":        vocab.Steps,
		"review_codes": vocab.ReviewCodes,
	} {
		for _, entry := range entries {
			if entry.Code == "" {
				return Vocabulary{}, fmt.Errorf("seed: %s entry with empty code", section)
			}
		}
	}
	return vocab, nil
}

// LoadVocabularyFile loads a vocabulary from an explicit file path.
func LoadVocabularyFile(path string) (Vocabulary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	vocab, parseErr := ParseVocabulary(content)
	if parseErr != nil {
		return Vocabulary{}, fmt.Errorf("seed: %s: %w", path, parseErr)
	}
	return vocab, nil
}

// Apply upserts every vocabulary entry. Re-running on an already seeded
// database refreshes labels without duplicating rows.
func Apply(ctx context.Context, store Upserter, vocab Vocabulary, logger *slog.Logger) error {
	total := 0
	for kind, entries := range map[domain.ReferenceKind][]Entry{
		domain.RefRevisionStatuses:     vocab.Statuses,
		domain.RefRevisionDescriptions: vocab.Descriptions,
		domain.RefRevisionSteps:        vocab.Steps,
		domain.RefReviewCodes:          vocab.ReviewCodes,
	} {
		for _, entry := range entries {
			err := store.Upsert(ctx, kind, domain.ReferenceEntry{
				Code:        entry.Code,
				Label:       entry.Label,
				LabelNative: entry.LabelNative,
				IsActive:    !entry.Inactive,
			})
			if err != nil {
				return fmt.Errorf("seed %s %q: %w", kind, entry.Code, err)
			}
			total++
		}
	}
	logger.Info("reference vocabulary seeded", "entries", total)
	return nil
}
