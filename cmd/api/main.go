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

	"github.com/sony/gobreaker/v2"

	httpadapter "github.com/kirillkom/field-gap-tracker/internal/adapters/http"
	"github.com/kirillkom/field-gap-tracker/internal/bootstrap"
	"github.com/kirillkom/field-gap-tracker/internal/config"
	"github.com/kirillkom/field-gap-tracker/internal/observability/logging"
	"github.com/kirillkom/field-gap-tracker/internal/observability/metrics"
)

const serviceName = "gap-api"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Hooks{
		Logger: logger,
		OnBreakerStateChange: func(operation string, _, to gobreaker.State) {
			httpMetrics.SetBreakerState(serviceName, operation, int(to))
		},
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// A failed initial load leaves the workspace in the failed state; POST /v1/reload retries.
	reloadErr := app.Workspace.Reload(ctx)
	httpMetrics.RecordReload(serviceName, reloadErr)
	status := app.Workspace.Status()
	httpMetrics.SetWorkspaceSize(serviceName, status.Records, status.Assessments)
	if reloadErr != nil {
		logger.Error("workspace_load_failed", "error", reloadErr)
	} else {
		logger.Info("workspace_loaded", "records", status.Records, "assessments", status.Assessments)
	}

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Dashboard:   app.Dashboard,
		Loader:      app.Dashboard,
		Assessments: app.Assessments,
		Fields:      app.Fields,
		Exports:     app.Exports,
		Metrics:     httpMetrics,
		Logger:      logger,
	}).Handler()

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpMetrics.Handler())
	mux.Handle("/", router)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      httpMetrics.Middleware(serviceName, mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
