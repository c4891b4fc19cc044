package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kirillkom/field-gap-tracker/internal/config"
	"github.com/kirillkom/field-gap-tracker/internal/core/ports"
)

const serviceName = "gap-api"

// Recorder receives domain-level observations from handlers.
type Recorder interface {
	RecordAssessmentSave(service, persistence string)
	RecordAssessmentDelete(service, status string)
	RecordFieldAdded(service, persistence string)
	RecordExport(service, format string)
	RecordReload(service string, err error)
	SetWorkspaceSize(service string, records, assessments int)
}

type Services struct {
	Dashboard   ports.DashboardReader
	Loader      ports.WorkspaceLoader
	Assessments ports.AssessmentService
	Fields      ports.FieldService
	Exports     ports.ExportService
	Metrics     Recorder
	Logger      *slog.Logger
}

type Router struct {
	cfg         config.Config
	dashboard   ports.DashboardReader
	loader      ports.WorkspaceLoader
	assessments ports.AssessmentService
	fields      ports.FieldService
	exports     ports.ExportService
	metrics     Recorder
	logger      *slog.Logger
	validator   *openAPIValidator
}

func NewRouter(cfg config.Config, svc Services) *Router {
	metrics := svc.Metrics
	if metrics == nil {
		metrics = noopRecorder{}
	}
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Router{
		cfg:         cfg,
		dashboard:   svc.Dashboard,
		loader:      svc.Loader,
		assessments: svc.Assessments,
		fields:      svc.Fields,
		exports:     svc.Exports,
		metrics:     metrics,
		logger:      logger,
	}
	if cfg.OpenAPIValidation {
		rt.validator = mustOpenAPIValidator()
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /v1/status", rt.status)
	mux.HandleFunc("POST /v1/reload", rt.reload)
	mux.HandleFunc("GET /v1/filters", rt.filters)
	mux.HandleFunc("GET /v1/dashboard", rt.dashboardView)
	mux.HandleFunc("GET /v1/stats", rt.stats)
	mux.HandleFunc("GET /v1/fields", rt.listFields)
	mux.HandleFunc("POST /v1/fields", rt.addField)
	mux.HandleFunc("GET /v1/fields/{name}", rt.fieldDetail)
	mux.HandleFunc("GET /v1/assessments", rt.listAssessments)
	mux.HandleFunc("PUT /v1/assessments/{name}", rt.saveAssessment)
	mux.HandleFunc("DELETE /v1/assessments/{name}", rt.deleteAssessment)
	mux.HandleFunc("GET /v1/assessments/{name}/history", rt.assessmentHistory)
	mux.HandleFunc("GET /v1/export/{file}", rt.exportAssessments)

	var handler http.Handler = mux
	if rt.validator != nil {
		handler = rt.validator.middleware(handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

type noopRecorder struct{}

func (noopRecorder) RecordAssessmentSave(string, string)   {}
func (noopRecorder) RecordAssessmentDelete(string, string) {}
func (noopRecorder) RecordFieldAdded(string, string)       {}
func (noopRecorder) RecordExport(string, string)           {}
func (noopRecorder) RecordReload(string, error)            {}
func (noopRecorder) SetWorkspaceSize(string, int, int)     {}
