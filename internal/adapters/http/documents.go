package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/velardo/doccontrol/internal/core/domain"
)

type createDocumentRequest struct {
	Number       string `json:"number"`
	Title        string `json:"title"`
	ProjectID    int64  `json:"project_id"`
	DisciplineID int64  `json:"discipline_id"`
	TypeID       int64  `json:"type_id"`
	LanguageID   *int64 `json:"language_id"`
}

func (rt *Router) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Number) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document number is required"})
		return
	}
	if req.ProjectID <= 0 || req.DisciplineID <= 0 || req.TypeID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "project_id, discipline_id and type_id are required"})
		return
	}

	doc := &domain.Document{
		Number:       strings.TrimSpace(req.Number),
		Title:        strings.TrimSpace(req.Title),
		ProjectID:    req.ProjectID,
		DisciplineID: req.DisciplineID,
		TypeID:       req.TypeID,
		LanguageID:   req.LanguageID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := rt.deps.Documents.Create(r.Context(), doc); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be a positive integer"})
		return
	}
	doc, err := rt.deps.Documents.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be a positive integer"})
		return
	}
	err := rt.deps.Lifecycle.SoftDeleteDocument(r.Context(), id)
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordRevisionOperation(serviceName, "document_delete", err)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) restoreDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be a positive integer"})
		return
	}
	err := rt.deps.Lifecycle.RestoreDocument(r.Context(), id)
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordRevisionOperation(serviceName, "document_restore", err)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportTransmittal(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Exporter == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "transmittal export is not configured"})
		return
	}
	projectID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "project id must be a positive integer"})
		return
	}

	lines, err := rt.deps.Revisions.ListActiveByProject(r.Context(), projectID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	payload, filename, err := rt.deps.Exporter.Write(projectID, lines)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
