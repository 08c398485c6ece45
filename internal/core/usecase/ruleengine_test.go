package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/velardo/doccontrol/internal/core/domain"
)

type ruleStoreFake struct {
	preset    *domain.WorkflowPreset
	rules     []domain.PresetRule
	sequences []domain.PresetSequenceEntry
	rulesErr  error
}

func (f *ruleStoreFake) GetPreset(_ context.Context, presetID int64) (*domain.WorkflowPreset, error) {
	if f.preset == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "get preset", fmt.Errorf("id=%d", presetID))
	}
	return f.preset, nil
}

func (f *ruleStoreFake) ListRules(context.Context, int64) ([]domain.PresetRule, error) {
	if f.rulesErr != nil {
		return nil, f.rulesErr
	}
	return f.rules, nil
}

func (f *ruleStoreFake) ListSequences(context.Context, int64) ([]domain.PresetSequenceEntry, error) {
	return f.sequences, nil
}

// refResolverFake resolves entries by (kind, id) and (kind, code).
type refResolverFake struct {
	entries []domain.ReferenceEntry
	kinds   []domain.ReferenceKind
}

func (f *refResolverFake) add(kind domain.ReferenceKind, entry domain.ReferenceEntry) {
	f.entries = append(f.entries, entry)
	f.kinds = append(f.kinds, kind)
}

func (f *refResolverFake) GetByID(_ context.Context, kind domain.ReferenceKind, id int64) (*domain.ReferenceEntry, error) {
	for i, entry := range f.entries {
		if f.kinds[i] == kind && entry.ID == id {
			copyEntry := entry
			return &copyEntry, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get reference", fmt.Errorf("%s id=%d", kind, id))
}

func (f *refResolverFake) GetByCode(_ context.Context, kind domain.ReferenceKind, code string) (*domain.ReferenceEntry, error) {
	for i, entry := range f.entries {
		if f.kinds[i] == kind && entry.Code == code {
			copyEntry := entry
			return &copyEntry, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get reference", fmt.Errorf("%s code=%s", kind, code))
}

func (f *refResolverFake) ListActive(_ context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntry, error) {
	out := make([]domain.ReferenceEntry, 0)
	for i, entry := range f.entries {
		if f.kinds[i] == kind && entry.IsActive {
			out = append(out, entry)
		}
	}
	return out, nil
}

func ptr(v int64) *int64 { return &v }

func newEngineFixture(rules []domain.PresetRule) (*WorkflowRuleEngineUseCase, *refResolverFake) {
	refs := &refResolverFake{}
	refs.add(domain.RefReviewCodes, domain.ReferenceEntry{ID: 100, Code: "A", Label: "Approved", IsActive: true})
	refs.add(domain.RefReviewCodes, domain.ReferenceEntry{ID: 101, Code: "A*", Label: "Approved with comments", IsActive: true})
	refs.add(domain.RefReviewCodes, domain.ReferenceEntry{ID: 102, Code: "R", Label: "Rejected", IsActive: true})
	refs.add(domain.RefRevisionSteps, domain.ReferenceEntry{ID: 20, Code: "01", IsActive: true})
	refs.add(domain.RefRevisionSteps, domain.ReferenceEntry{ID: 21, Code: "02", IsActive: true})
	refs.add(domain.RefRevisionSteps, domain.ReferenceEntry{ID: 29, Code: "XX", IsActive: true})

	engine := NewWorkflowRuleEngineUseCase(&ruleStoreFake{rules: rules}, refs)
	return engine, refs
}

func TestResolvePriorityOrderFirstMatchWins(t *testing.T) {
	engine, _ := newEngineFixture([]domain.PresetRule{
		{
			ID: 1, Priority: 10,
			CurrentDescriptionID: 3, CurrentStepID: 20,
			Operator: domain.OperatorEquals, ReviewCodeID: ptr(100),
			NextDescriptionID: ptr(4), NextStepID: ptr(20),
		},
		{
			ID: 2, Priority: 20,
			CurrentDescriptionID: 3, CurrentStepID: 20,
			Operator: domain.OperatorEquals, ReviewCodeID: ptr(100),
			NextDescriptionID: ptr(9), NextStepID: ptr(21),
		},
	})

	decision, err := engine.Resolve(context.Background(), 1, 3, 20, 100)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionSpecificRevision {
		t.Fatalf("expected specific_revision, got %q", decision.Action)
	}
	if decision.RuleID == nil || *decision.RuleID != 1 {
		t.Fatalf("expected priority-10 rule to win, got %+v", decision.RuleID)
	}
	if decision.NextDescriptionID == nil || *decision.NextDescriptionID != 4 {
		t.Fatalf("expected next description 4, got %+v", decision.NextDescriptionID)
	}
}

func TestResolveOperatorInList(t *testing.T) {
	rules := []domain.PresetRule{{
		ID: 1, Priority: 10,
		CurrentDescriptionID: 3, CurrentStepID: 20,
		Operator:          domain.OperatorInList,
		ReviewCodes:       map[string]struct{}{"A": {}, "A*": {}},
		NextDescriptionID: ptr(4),
	}}
	engine, _ := newEngineFixture(rules)

	for _, tc := range []struct {
		reviewCodeID int64
		wantMatch    bool
	}{
		{100, true},  // A
		{101, true},  // A*
		{102, false}, // R
	} {
		decision, err := engine.Resolve(context.Background(), 1, 3, 20, tc.reviewCodeID)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		matched := decision.Action == domain.ActionSpecificRevision
		if matched != tc.wantMatch {
			t.Fatalf("review code %d: match = %v, want %v", tc.reviewCodeID, matched, tc.wantMatch)
		}
	}
}

func TestResolveOperatorNotInList(t *testing.T) {
	rules := []domain.PresetRule{{
		ID: 1, Priority: 10,
		CurrentDescriptionID: 3, CurrentStepID: 20,
		Operator:          domain.OperatorNotInList,
		ReviewCodes:       map[string]struct{}{"A": {}, "A*": {}},
		NextDescriptionID: ptr(4),
	}}
	engine, _ := newEngineFixture(rules)

	decision, err := engine.Resolve(context.Background(), 1, 3, 20, 102)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionSpecificRevision {
		t.Fatalf("expected R to match not_in_list, got %q", decision.Action)
	}

	decision, err = engine.Resolve(context.Background(), 1, 3, 20, 100)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionNoMatch {
		t.Fatalf("expected A not to match not_in_list, got %q", decision.Action)
	}
}

func TestResolveMalformedCodeListFailsClosed(t *testing.T) {
	// A nil set is how the rule store surfaces a malformed review_code_list.
	for _, op := range []domain.RuleOperator{domain.OperatorInList, domain.OperatorNotInList} {
		engine, _ := newEngineFixture([]domain.PresetRule{{
			ID: 1, Priority: 10,
			CurrentDescriptionID: 3, CurrentStepID: 20,
			Operator:          op,
			ReviewCodes:       nil,
			NextDescriptionID: ptr(4),
		}})

		decision, err := engine.Resolve(context.Background(), 1, 3, 20, 100)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if decision.Action != domain.ActionNoMatch {
			t.Fatalf("operator %s: expected no_match for malformed list, got %q", op, decision.Action)
		}
	}
}

func TestResolveNotEquals(t *testing.T) {
	engine, _ := newEngineFixture([]domain.PresetRule{{
		ID: 1, Priority: 10,
		CurrentDescriptionID: 3, CurrentStepID: 20,
		Operator: domain.OperatorNotEquals, ReviewCodeID: ptr(102),
		NextDescriptionID: ptr(4),
	}})

	decision, err := engine.Resolve(context.Background(), 1, 3, 20, 100)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionSpecificRevision {
		t.Fatalf("expected A to pass not_equals R, got %q", decision.Action)
	}

	decision, err = engine.Resolve(context.Background(), 1, 3, 20, 102)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionNoMatch {
		t.Fatalf("expected R to fail not_equals R, got %q", decision.Action)
	}
}

func TestResolveIncrementNumberFallback(t *testing.T) {
	engine, _ := newEngineFixture([]domain.PresetRule{{
		ID: 1, Priority: 10,
		CurrentDescriptionID: 3, CurrentStepID: 20,
		Operator: domain.OperatorEquals, ReviewCodeID: ptr(102),
		ActionOnFail: domain.ActionOnFailIncrement,
	}})

	decision, err := engine.Resolve(context.Background(), 1, 3, 20, 102)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionIncrementNumber {
		t.Fatalf("expected increment_number, got %q", decision.Action)
	}
	if decision.NextDescriptionID == nil || *decision.NextDescriptionID != 3 {
		t.Fatalf("expected description unchanged, got %+v", decision.NextDescriptionID)
	}
	if decision.NextStepID == nil || *decision.NextStepID != 21 {
		t.Fatalf("expected step with code 02 (id 21), got %+v", decision.NextStepID)
	}
}

func TestResolveIncrementMissingNextStepIsNoAction(t *testing.T) {
	engine, _ := newEngineFixture([]domain.PresetRule{{
		ID: 1, Priority: 10,
		CurrentDescriptionID: 3, CurrentStepID: 21, // step "02", no "03" configured
		Operator: domain.OperatorEquals, ReviewCodeID: ptr(102),
		ActionOnFail: domain.ActionOnFailIncrement,
	}})

	decision, err := engine.Resolve(context.Background(), 1, 3, 21, 102)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionNoAction {
		t.Fatalf("expected no_action when the next step does not exist, got %q", decision.Action)
	}
}

func TestResolveIncrementNonNumericStepIsNoAction(t *testing.T) {
	engine, _ := newEngineFixture([]domain.PresetRule{{
		ID: 1, Priority: 10,
		CurrentDescriptionID: 3, CurrentStepID: 29, // step code "XX"
		Operator: domain.OperatorEquals, ReviewCodeID: ptr(102),
		ActionOnFail: domain.ActionOnFailIncrement,
	}})

	decision, err := engine.Resolve(context.Background(), 1, 3, 29, 102)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionNoAction {
		t.Fatalf("expected no_action for non-numeric step code, got %q", decision.Action)
	}
}

func TestResolveUnknownActionOnFailIsNoAction(t *testing.T) {
	engine, _ := newEngineFixture([]domain.PresetRule{{
		ID: 1, Priority: 10,
		CurrentDescriptionID: 3, CurrentStepID: 20,
		Operator: domain.OperatorEquals, ReviewCodeID: ptr(102),
		ActionOnFail: "stay_same",
	}})

	decision, err := engine.Resolve(context.Background(), 1, 3, 20, 102)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionNoAction {
		t.Fatalf("expected no_action for unknown action_on_fail, got %q", decision.Action)
	}
}

func TestResolveNoMatch(t *testing.T) {
	engine, _ := newEngineFixture([]domain.PresetRule{{
		ID: 1, Priority: 10,
		CurrentDescriptionID: 99, CurrentStepID: 20,
		Operator: domain.OperatorEquals, ReviewCodeID: ptr(100),
	}})

	decision, err := engine.Resolve(context.Background(), 1, 3, 20, 100)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Action != domain.ActionNoMatch {
		t.Fatalf("expected no_match, got %q", decision.Action)
	}
}

func TestResolveEmptyRuleSetIsPresetNotFound(t *testing.T) {
	refs := &refResolverFake{}
	engine := NewWorkflowRuleEngineUseCase(&ruleStoreFake{}, refs)

	_, err := engine.Resolve(context.Background(), 1, 3, 20, 100)
	if !domain.IsKind(err, domain.ErrPresetNotFound) {
		t.Fatalf("expected ErrPresetNotFound, got %v", err)
	}
}
