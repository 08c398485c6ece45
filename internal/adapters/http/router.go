package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/velardo/doccontrol/internal/core/domain"
	"github.com/velardo/doccontrol/internal/core/ports"
	"github.com/velardo/doccontrol/internal/observability/metrics"
)

const serviceName = "api"

// TransmittalExporter renders a project's active revisions into a
// downloadable workbook.
type TransmittalExporter interface {
	Write(projectID int64, lines []domain.TransmittalLine) ([]byte, string, error)
}

// Dependencies carries everything the router serves. Metrics and Exporter may
// be nil; the matching endpoints degrade gracefully.
type Dependencies struct {
	Lifecycle ports.RevisionLifecycle
	Revisions ports.RevisionStore
	Documents ports.DocumentStore
	Refs      ports.ReferenceResolver
	Rules     ports.RuleStore
	Resolver  ports.WorkflowResolver
	Checker   ports.PresetChecker
	Reviews   ports.ReviewRecorder
	Storage   ports.ContentStorage
	Exporter  TransmittalExporter

	Metrics *metrics.HTTPServerMetrics
	Logger  *slog.Logger

	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
	OverloadWait   time.Duration
}

type Router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) *Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.OverloadWait <= 0 {
		deps.OverloadWait = 200 * time.Millisecond
	}
	return &Router{deps: deps}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.deps.Metrics != nil {
		mux.Handle("GET /metrics", rt.deps.Metrics.Handler())
	}

	mux.HandleFunc("POST /v1/documents", rt.createDocument)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/documents/{id}/restore", rt.restoreDocument)
	mux.HandleFunc("POST /v1/documents/{id}/revisions", rt.createRevision)
	mux.HandleFunc("GET /v1/documents/{id}/revisions", rt.listRevisions)

	mux.HandleFunc("POST /v1/revisions/{id}/cancel", rt.cancelRevision)
	mux.HandleFunc("DELETE /v1/revisions/{id}", rt.deleteRevision)
	mux.HandleFunc("POST /v1/revisions/{id}/restore", rt.restoreRevision)
	mux.HandleFunc("GET /v1/revisions/{id}/content", rt.downloadContent)
	mux.HandleFunc("POST /v1/revisions/{id}/review", rt.recordReview)

	mux.HandleFunc("POST /v1/workflow/resolve", rt.resolveWorkflow)
	mux.HandleFunc("GET /v1/presets/{id}/rules", rt.listPresetRules)
	mux.HandleFunc("POST /v1/presets/{id}/validate", rt.validatePreset)
	mux.HandleFunc("GET /v1/reference/{kind}", rt.listReference)
	mux.HandleFunc("GET /v1/projects/{id}/transmittal-export", rt.exportTransmittal)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.deps.MaxConcurrent, rt.deps.OverloadWait)
	handler = rateLimitMiddleware(handler, rt.deps.RateLimitRPS, rt.deps.RateLimitBurst)
	if rt.deps.Metrics != nil {
		handler = rt.deps.Metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.deps.Logger.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
