package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/field-gap-tracker/internal/bootstrap"
	"github.com/kirillkom/field-gap-tracker/internal/config"
	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/observability/logging"
	"github.com/kirillkom/field-gap-tracker/internal/observability/metrics"
)

const serviceName = "gap-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.EventsEnabled {
		logger.Error("worker_requires_events", "hint", "set EVENTS_ENABLED=true")
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Hooks{Logger: logger})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeAssessmentChanged(ctx, func(handlerCtx context.Context, event domain.AssessmentChanged) error {
		workerMetrics.ObserveEventLag(serviceName, time.Since(event.At))

		snapshotCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
		defer cancel()

		workerMetrics.StartSnapshot()
		start := time.Now()
		keys, err := writeSnapshot(snapshotCtx, app)
		workerMetrics.FinishSnapshot(serviceName, time.Since(start), err)
		if err != nil {
			return err
		}
		logger.Info("export_snapshot_written",
			"field_name", event.FieldName,
			"status", event.Status,
			"deleted", event.Deleted,
			"keys", keys,
		)
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

// writeSnapshot reloads the workspace so progress stats include fields added by the api,
// then stores one export per format.
func writeSnapshot(ctx context.Context, app *bootstrap.App) ([]string, error) {
	if err := app.Workspace.Reload(ctx); err != nil {
		return nil, err
	}
	return app.Exports.WriteSnapshot(ctx, app.Storage, app.Config.ExportPrefix)
}
