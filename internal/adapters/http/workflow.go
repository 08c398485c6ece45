package httpadapter

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/velardo/doccontrol/internal/core/domain"
	"github.com/velardo/doccontrol/internal/core/ports"
)

type resolveWorkflowRequest struct {
	PresetID             int64 `json:"preset_id"`
	CurrentDescriptionID int64 `json:"current_description_id"`
	CurrentStepID        int64 `json:"current_step_id"`
	ReviewCodeID         int64 `json:"review_code_id"`
}

func (rt *Router) resolveWorkflow(w http.ResponseWriter, r *http.Request) {
	var req resolveWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.PresetID <= 0 || req.CurrentDescriptionID <= 0 || req.CurrentStepID <= 0 || req.ReviewCodeID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preset_id, current_description_id, current_step_id and review_code_id are required"})
		return
	}

	decision, err := rt.deps.Resolver.Resolve(r.Context(), req.PresetID, req.CurrentDescriptionID, req.CurrentStepID, req.ReviewCodeID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordWorkflowResolution(serviceName, string(decision.Action))
	}
	writeJSON(w, http.StatusOK, decision)
}

type recordReviewRequest struct {
	PresetID     int64  `json:"preset_id"`
	ReviewCodeID int64  `json:"review_code_id"`
	ReviewerID   int64  `json:"reviewer_id"`
	Remarks      string `json:"remarks"`
}

func (rt *Router) recordReview(w http.ResponseWriter, r *http.Request) {
	revisionID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "revision id must be a positive integer"})
		return
	}

	var req recordReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.PresetID <= 0 || req.ReviewCodeID <= 0 || req.ReviewerID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preset_id, review_code_id and reviewer_id are required"})
		return
	}

	decision, err := rt.deps.Reviews.RecordReview(r.Context(), ports.RecordReviewRequest{
		PresetID:     req.PresetID,
		RevisionID:   revisionID,
		ReviewCodeID: req.ReviewCodeID,
		ReviewerID:   req.ReviewerID,
		Remarks:      req.Remarks,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordWorkflowResolution(serviceName, string(decision.Action))
	}
	writeJSON(w, http.StatusOK, decision)
}

func (rt *Router) listPresetRules(w http.ResponseWriter, r *http.Request) {
	presetID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preset id must be a positive integer"})
		return
	}

	preset, err := rt.deps.Rules.GetPreset(r.Context(), presetID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rules, err := rt.deps.Rules.ListRules(r.Context(), presetID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preset": preset, "rules": presentRules(rules)})
}

type presentedRule struct {
	ID                   int64    `json:"id"`
	DocumentTypeID       *int64   `json:"document_type_id,omitempty"`
	CurrentDescriptionID int64    `json:"current_description_id"`
	CurrentStepID        int64    `json:"current_step_id"`
	Operator             string   `json:"operator"`
	ReviewCodeID         *int64   `json:"review_code_id,omitempty"`
	ReviewCodes          []string `json:"review_codes,omitempty"`
	Priority             int      `json:"priority"`
	NextDescriptionID    *int64   `json:"next_description_id,omitempty"`
	NextStepID           *int64   `json:"next_step_id,omitempty"`
	ActionOnFail         string   `json:"action_on_fail"`
}

func presentRules(rules []domain.PresetRule) []presentedRule {
	out := make([]presentedRule, 0, len(rules))
	for _, rule := range rules {
		presented := presentedRule{
			ID:                   rule.ID,
			DocumentTypeID:       rule.DocumentTypeID,
			CurrentDescriptionID: rule.CurrentDescriptionID,
			CurrentStepID:        rule.CurrentStepID,
			Operator:             string(rule.Operator),
			ReviewCodeID:         rule.ReviewCodeID,
			Priority:             rule.Priority,
			NextDescriptionID:    rule.NextDescriptionID,
			NextStepID:           rule.NextStepID,
			ActionOnFail:         rule.ActionOnFail,
		}
		for code := range rule.ReviewCodes {
			presented.ReviewCodes = append(presented.ReviewCodes, code)
		}
		sort.Strings(presented.ReviewCodes)
		out = append(out, presented)
	}
	return out
}

func (rt *Router) validatePreset(w http.ResponseWriter, r *http.Request) {
	presetID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preset id must be a positive integer"})
		return
	}

	issues, err := rt.deps.Checker.ValidateSequence(r.Context(), presetID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if issues == nil {
		issues = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": len(issues) == 0, "issues": issues})
}

func (rt *Router) listReference(w http.ResponseWriter, r *http.Request) {
	kind := domain.ReferenceKind(r.PathValue("kind"))
	entries, err := rt.deps.Refs.ListActive(r.Context(), kind)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
