package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	snapshotTotal    *prometheus.CounterVec
	snapshotDuration *prometheus.HistogramVec
	snapshotInFlight prometheus.Gauge
	eventLag         *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	snapshotTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "export_snapshot_total",
			Help:      "Total export snapshot runs by status.",
		},
		[]string{"service", "status"},
	)
	snapshotDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "export_snapshot_duration_seconds",
			Help:      "Export snapshot duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	snapshotInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "export_snapshot_in_flight",
			Help:      "Number of in-flight export snapshot runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between an assessment change and the snapshot run it triggered.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(snapshotTotal, snapshotDuration, snapshotInFlight, eventLag)

	return &WorkerMetrics{
		registry:         registry,
		snapshotTotal:    snapshotTotal,
		snapshotDuration: snapshotDuration,
		snapshotInFlight: snapshotInFlight,
		eventLag:         eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartSnapshot() {
	m.snapshotInFlight.Inc()
}

func (m *WorkerMetrics) FinishSnapshot(service string, duration time.Duration, err error) {
	m.snapshotInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.snapshotTotal.WithLabelValues(service, status).Inc()
	m.snapshotDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveEventLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}
