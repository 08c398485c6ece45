package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/velardo/doccontrol/internal/core/ports"
)

// maxUploadBytes caps a single revision upload.
const maxUploadBytes = 256 << 20

func (rt *Router) createRevision(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be a positive integer"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}

	uploaderID, err := strconv.ParseInt(r.FormValue("uploader_id"), 10, 64)
	if err != nil || uploaderID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "uploader_id is required"})
		return
	}

	req := ports.CreateRevisionRequest{
		DocumentID: documentID,
		UploaderID: uploaderID,
		Remarks:    r.FormValue("remarks"),
	}
	if v := r.FormValue("description_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description_id must be an integer"})
			return
		}
		req.DescriptionID = &id
	}
	if v := r.FormValue("step_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "step_id must be an integer"})
			return
		}
		req.StepID = &id
	}

	file, fileHeader, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		req.Filename = fileHeader.Filename
		req.Content = file
	} else if err != http.ErrMissingFile {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid file field"})
		return
	}

	rev, err := rt.deps.Lifecycle.CreateRevision(r.Context(), req)
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordRevisionOperation(serviceName, "create", err)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

func (rt *Router) listRevisions(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be a positive integer"})
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	revisions, err := rt.deps.Revisions.ListByDocument(r.Context(), documentID, includeDeleted)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revisions": revisions})
}

func (rt *Router) cancelRevision(w http.ResponseWriter, r *http.Request) {
	revisionID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "revision id must be a positive integer"})
		return
	}

	var req struct {
		ActorID int64 `json:"actor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rev, err := rt.deps.Lifecycle.CancelRevision(r.Context(), revisionID, req.ActorID)
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordRevisionOperation(serviceName, "cancel", err)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (rt *Router) deleteRevision(w http.ResponseWriter, r *http.Request) {
	revisionID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "revision id must be a positive integer"})
		return
	}
	err := rt.deps.Lifecycle.SoftDeleteRevision(r.Context(), revisionID)
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordRevisionOperation(serviceName, "delete", err)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) restoreRevision(w http.ResponseWriter, r *http.Request) {
	revisionID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "revision id must be a positive integer"})
		return
	}
	err := rt.deps.Lifecycle.RestoreRevision(r.Context(), revisionID)
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordRevisionOperation(serviceName, "restore", err)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) downloadContent(w http.ResponseWriter, r *http.Request) {
	revisionID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "revision id must be a positive integer"})
		return
	}
	rev, err := rt.deps.Revisions.GetByID(r.Context(), revisionID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rev.ContentRef == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "revision has no stored content"})
		return
	}

	rc, err := rt.deps.Storage.Open(r.Context(), rev.ContentRef)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(rev.ContentRef))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
