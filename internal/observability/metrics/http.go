package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fgt"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	assessmentSavesTotal   *prometheus.CounterVec
	assessmentDeletesTotal *prometheus.CounterVec
	fieldsAddedTotal       *prometheus.CounterVec
	exportsTotal           *prometheus.CounterVec
	reloadsTotal           *prometheus.CounterVec
	workspaceRecords       *prometheus.GaugeVec
	workspaceAssessments   *prometheus.GaugeVec
	breakerState           *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	assessmentSavesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessments",
			Name:      "saves_total",
			Help:      "Assessment saves by persistence outcome.",
		},
		[]string{"service", "persistence"},
	)
	assessmentDeletesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessments",
			Name:      "deletes_total",
			Help:      "Assessment deletions by result.",
		},
		[]string{"service", "status"},
	)
	fieldsAddedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fields",
			Name:      "added_total",
			Help:      "Hand-added fields by persistence outcome.",
		},
		[]string{"service", "persistence"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exports",
			Name:      "downloads_total",
			Help:      "Assessment exports served by format.",
		},
		[]string{"service", "format"},
	)
	reloadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "reloads_total",
			Help:      "Workspace loads by result.",
		},
		[]string{"service", "status"},
	)
	workspaceRecords := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "records",
			Help:      "Field records in the loaded workspace.",
		},
		[]string{"service"},
	)
	workspaceAssessments := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "assessments",
			Help:      "Assessments in the loaded workspace overlay.",
		},
		[]string{"service"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		assessmentSavesTotal,
		assessmentDeletesTotal,
		fieldsAddedTotal,
		exportsTotal,
		reloadsTotal,
		workspaceRecords,
		workspaceAssessments,
		breakerState,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		assessmentSavesTotal:   assessmentSavesTotal,
		assessmentDeletesTotal: assessmentDeletesTotal,
		fieldsAddedTotal:       fieldsAddedTotal,
		exportsTotal:           exportsTotal,
		reloadsTotal:           reloadsTotal,
		workspaceRecords:       workspaceRecords,
		workspaceAssessments:   workspaceAssessments,
		breakerState:           breakerState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath folds field names out of paths to keep label cardinality bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/fields/"):
		return "/v1/fields/{name}"
	case strings.HasPrefix(path, "/v1/assessments/") && strings.HasSuffix(path, "/history"):
		return "/v1/assessments/{name}/history"
	case strings.HasPrefix(path, "/v1/assessments/"):
		return "/v1/assessments/{name}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAssessmentSave(service, persistence string) {
	if persistence == "" {
		persistence = "unknown"
	}
	m.assessmentSavesTotal.WithLabelValues(service, persistence).Inc()
}

func (m *HTTPServerMetrics) RecordAssessmentDelete(service, status string) {
	m.assessmentDeletesTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordFieldAdded(service, persistence string) {
	if persistence == "" {
		persistence = "unknown"
	}
	m.fieldsAddedTotal.WithLabelValues(service, persistence).Inc()
}

func (m *HTTPServerMetrics) RecordExport(service, format string) {
	m.exportsTotal.WithLabelValues(service, format).Inc()
}

func (m *HTTPServerMetrics) RecordReload(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.reloadsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) SetWorkspaceSize(service string, records, assessments int) {
	m.workspaceRecords.WithLabelValues(service).Set(float64(records))
	m.workspaceAssessments.WithLabelValues(service).Set(float64(assessments))
}

func (m *HTTPServerMetrics) SetBreakerState(service, operation string, state int) {
	m.breakerState.WithLabelValues(service, operation).Set(float64(state))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
