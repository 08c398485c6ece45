package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/velardo/doccontrol/internal/core/domain"
	"github.com/velardo/doccontrol/internal/core/ports"
)

// WorkflowRuleEngineUseCase decides the next workflow code after a review
// verdict by evaluating a preset's prioritized rule set. Pure read, no
// side effects.
type WorkflowRuleEngineUseCase struct {
	rules ports.RuleStore
	refs  ports.ReferenceResolver
}

func NewWorkflowRuleEngineUseCase(rules ports.RuleStore, refs ports.ReferenceResolver) *WorkflowRuleEngineUseCase {
	return &WorkflowRuleEngineUseCase{rules: rules, refs: refs}
}

// Resolve finds the first applicable rule for the current workflow code and
// verdict. An empty rule set is reported as a preset configuration problem so
// callers can tell "nothing configured" apart from "configured, none matched".
func (uc *WorkflowRuleEngineUseCase) Resolve(ctx context.Context, presetID, currentDescriptionID, currentStepID, reviewCodeID int64) (domain.Decision, error) {
	rules, err := uc.rules.ListRules(ctx, presetID)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("load preset rules: %w", err)
	}
	if len(rules) == 0 {
		return domain.Decision{}, domain.WrapError(domain.ErrPresetNotFound, "resolve workflow", fmt.Errorf("preset %d", presetID))
	}

	reviewCode, err := uc.refs.GetByID(ctx, domain.RefReviewCodes, reviewCodeID)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("fetch review code: %w", err)
	}

	for _, rule := range rules {
		if rule.CurrentDescriptionID != currentDescriptionID || rule.CurrentStepID != currentStepID {
			continue
		}
		if !rule.MatchesReview(*reviewCode) {
			continue
		}
		return uc.decide(ctx, rule, currentDescriptionID, currentStepID)
	}

	return domain.Decision{Action: domain.ActionNoMatch}, nil
}

func (uc *WorkflowRuleEngineUseCase) decide(ctx context.Context, rule domain.PresetRule, currentDescriptionID, currentStepID int64) (domain.Decision, error) {
	ruleID := rule.ID

	if rule.NextDescriptionID != nil {
		return domain.Decision{
			Action:            domain.ActionSpecificRevision,
			NextDescriptionID: rule.NextDescriptionID,
			NextStepID:        rule.NextStepID,
			RuleID:            &ruleID,
		}, nil
	}

	if rule.ActionOnFail == domain.ActionOnFailIncrement {
		return uc.incrementStep(ctx, ruleID, currentDescriptionID, currentStepID)
	}

	// Unrecognized action_on_fail values (e.g. "stay_same" in legacy preset
	// data) fall through to no_action.
	return domain.Decision{Action: domain.ActionNoAction, RuleID: &ruleID}, nil
}

// incrementStep moves to the step whose code is the current step code plus
// one, keeping the description. Non-numeric step codes and missing target
// steps resolve to no_action, never an error.
func (uc *WorkflowRuleEngineUseCase) incrementStep(ctx context.Context, ruleID, currentDescriptionID, currentStepID int64) (domain.Decision, error) {
	step, err := uc.refs.GetByID(ctx, domain.RefRevisionSteps, currentStepID)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("fetch current step: %w", err)
	}

	n, err := strconv.Atoi(step.Code)
	if err != nil {
		return domain.Decision{Action: domain.ActionNoAction, RuleID: &ruleID}, nil
	}

	next, err := uc.refs.GetByCode(ctx, domain.RefRevisionSteps, domain.PadSequence(n+1))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Decision{Action: domain.ActionNoAction, RuleID: &ruleID}, nil
		}
		return domain.Decision{}, fmt.Errorf("fetch next step: %w", err)
	}

	return domain.Decision{
		Action:            domain.ActionIncrementNumber,
		NextDescriptionID: &currentDescriptionID,
		NextStepID:        &next.ID,
		RuleID:            &ruleID,
	}, nil
}
