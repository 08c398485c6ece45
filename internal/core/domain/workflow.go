package domain

import "time"

type RuleOperator string

const (
	OperatorEquals    RuleOperator = "equals"
	OperatorNotEquals RuleOperator = "not_equals"
	OperatorInList    RuleOperator = "in_list"
	OperatorNotInList RuleOperator = "not_in_list"
)

// ActionOnFailIncrement is the only action_on_fail value the engine acts on;
// anything else falls through to a no_action decision.
const ActionOnFailIncrement = "increment_number"

// WorkflowPreset is a named, reusable set of sequencing rules.
type WorkflowPreset struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsGlobal    bool      `json:"is_global"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PresetSequenceEntry describes one step of the canonical phase progression a
// preset expects. Display and validation only; the rule engine never reads it.
type PresetSequenceEntry struct {
	ID            int64 `json:"id"`
	PresetID      int64 `json:"preset_id"`
	Order         int   `json:"sequence_order"`
	DescriptionID int64 `json:"description_id"`
	StepID        int64 `json:"step_id"`
	IsFinal       bool  `json:"is_final"`
}

// PresetRule is one conditional workflow transition. ReviewCodes is the
// deserialized review_code_list; nil means the list was absent or malformed,
// which makes both list operators match nothing.
type PresetRule struct {
	ID                   int64
	PresetID             int64
	DocumentTypeID       *int64
	CurrentDescriptionID int64
	CurrentStepID        int64
	Operator             RuleOperator
	ReviewCodeID         *int64
	ReviewCodes          map[string]struct{}
	Priority             int
	NextDescriptionID    *int64
	NextStepID           *int64
	ActionOnFail         string
}

// MatchesReview reports whether the rule's operator test passes for the
// given review code. Unknown operators match nothing.
func (r PresetRule) MatchesReview(code ReferenceEntry) bool {
	switch r.Operator {
	case OperatorEquals:
		return r.ReviewCodeID != nil && *r.ReviewCodeID == code.ID
	case OperatorNotEquals:
		return r.ReviewCodeID == nil || *r.ReviewCodeID != code.ID
	case OperatorInList:
		if r.ReviewCodes == nil {
			return false
		}
		_, ok := r.ReviewCodes[code.Code]
		return ok
	case OperatorNotInList:
		if r.ReviewCodes == nil {
			return false
		}
		_, ok := r.ReviewCodes[code.Code]
		return !ok
	}
	return false
}

type DecisionAction string

const (
	ActionSpecificRevision DecisionAction = "specific_revision"
	ActionIncrementNumber  DecisionAction = "increment_number"
	ActionNoAction         DecisionAction = "no_action"
	ActionNoMatch          DecisionAction = "no_match"
)

// Decision is the rule engine's answer for the next workflow code.
type Decision struct {
	Action            DecisionAction `json:"action"`
	NextDescriptionID *int64         `json:"next_description_id,omitempty"`
	NextStepID        *int64         `json:"next_step_id,omitempty"`
	RuleID            *int64         `json:"rule_id,omitempty"`
}
