package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/velardo/doccontrol/internal/core/domain"
)

type RuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRuleRepository(db *sql.DB, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

func (r *RuleRepository) GetPreset(ctx context.Context, presetID int64) (*domain.WorkflowPreset, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, COALESCE(description, ''), is_global, created_by, created_at
FROM workflow_presets
WHERE id = $1
`, presetID)

	var preset domain.WorkflowPreset
	err := row.Scan(&preset.ID, &preset.Name, &preset.Description, &preset.IsGlobal, &preset.CreatedBy, &preset.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPresetNotFound, "get preset", fmt.Errorf("preset %d", presetID))
		}
		return nil, fmt.Errorf("scan preset: %w", err)
	}
	return &preset, nil
}

// ListRules returns the preset's rules in evaluation order. The ordering is
// part of the engine's contract: equal priorities resolve by insertion order.
func (r *RuleRepository) ListRules(ctx context.Context, presetID int64) ([]domain.PresetRule, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, preset_id, document_type_id, current_description_id, current_step_id,
       operator, review_code_id, review_code_list, priority,
       next_description_id, next_step_id, action_on_fail
FROM workflow_preset_rules
WHERE preset_id = $1
ORDER BY priority ASC, id ASC
`, presetID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PresetRule, 0)
	for rows.Next() {
		var (
			rule     domain.PresetRule
			operator string
			rawList  []byte
		)
		err := rows.Scan(&rule.ID, &rule.PresetID, &rule.DocumentTypeID,
			&rule.CurrentDescriptionID, &rule.CurrentStepID,
			&operator, &rule.ReviewCodeID, &rawList, &rule.Priority,
			&rule.NextDescriptionID, &rule.NextStepID, &rule.ActionOnFail)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rule.Operator = domain.RuleOperator(operator)
		rule.ReviewCodes = r.decodeReviewCodes(rule.ID, rawList)
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return out, nil
}

// decodeReviewCodes deserializes a stored review_code_list. A missing or
// malformed payload yields nil, which makes both list operators match
// nothing rather than failing the whole resolution.
func (r *RuleRepository) decodeReviewCodes(ruleID int64, raw []byte) map[string]struct{} {
	if len(raw) == 0 {
		return nil
	}
	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		r.logger.Warn("rule review_code_list is not a JSON string array, list operators will not match",
			"rule_id", ruleID, "error", err)
		return nil
	}
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// ListSequences returns the preset's phase progression in authored order.
func (r *RuleRepository) ListSequences(ctx context.Context, presetID int64) ([]domain.PresetSequenceEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, preset_id, sequence_order, description_id, step_id, is_final
FROM workflow_preset_sequences
WHERE preset_id = $1
ORDER BY id ASC
`, presetID)
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PresetSequenceEntry, 0)
	for rows.Next() {
		var entry domain.PresetSequenceEntry
		err := rows.Scan(&entry.ID, &entry.PresetID, &entry.Order, &entry.DescriptionID, &entry.StepID, &entry.IsFinal)
		if err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sequences: %w", err)
	}
	return out, nil
}
