package usecase

import (
	"context"
	"fmt"

	"github.com/velardo/doccontrol/internal/core/domain"
	"github.com/velardo/doccontrol/internal/core/ports"
)

// PresetCheckerUseCase validates preset sequence configuration for authoring
// tools. Violations are reported, never auto-corrected.
type PresetCheckerUseCase struct {
	rules ports.RuleStore
}

func NewPresetCheckerUseCase(rules ports.RuleStore) *PresetCheckerUseCase {
	return &PresetCheckerUseCase{rules: rules}
}

// ValidateSequence checks that sequence_order values are unique and ascending
// in authored order, and that at most one entry is marked final — and if one
// is, that it is the terminal phase. Zero final entries means the preset is
// intentionally open-ended.
func (uc *PresetCheckerUseCase) ValidateSequence(ctx context.Context, presetID int64) ([]string, error) {
	if _, err := uc.rules.GetPreset(ctx, presetID); err != nil {
		return nil, fmt.Errorf("fetch preset: %w", err)
	}
	entries, err := uc.rules.ListSequences(ctx, presetID)
	if err != nil {
		return nil, fmt.Errorf("load preset sequences: %w", err)
	}
	return CheckSequenceEntries(entries), nil
}

func CheckSequenceEntries(entries []domain.PresetSequenceEntry) []string {
	violations := make([]string, 0)
	seen := make(map[int]bool, len(entries))

	for i, entry := range entries {
		if seen[entry.Order] {
			violations = append(violations, fmt.Sprintf("duplicate sequence_order %d", entry.Order))
		}
		seen[entry.Order] = true
		if i > 0 && entry.Order <= entries[i-1].Order {
			violations = append(violations, fmt.Sprintf("sequence_order %d is not ascending after %d", entry.Order, entries[i-1].Order))
		}
	}

	finals := 0
	finalIdx := -1
	for i, entry := range entries {
		if entry.IsFinal {
			finals++
			finalIdx = i
		}
	}
	if finals > 1 {
		violations = append(violations, fmt.Sprintf("preset has %d final entries, expected at most one", finals))
	}
	if finals == 1 && finalIdx != len(entries)-1 {
		violations = append(violations, "final entry is not the terminal phase")
	}

	return violations
}
