package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/field-gap-tracker/internal/config"
	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/core/ports"
	"github.com/kirillkom/field-gap-tracker/internal/core/usecase"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/catalog/csvsource"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/export/csvexport"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/export/xlsxexport"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/filtercatalog"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/queue/nats"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/resilience"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/storage/localfs"
)

// Hooks lets a binary observe infrastructure it does not construct itself.
type Hooks struct {
	Logger               *slog.Logger
	OnBreakerStateChange func(operation string, from, to gobreaker.State)
}

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Catalog domain.FilterCatalog

	Storage   *localfs.Storage
	FieldRepo *postgres.FieldRepository
	Queue     *nats.Queue

	Workspace   *usecase.Workspace
	Dashboard   *usecase.DashboardUseCase
	Assessments *usecase.AssessmentUseCase
	Fields      *usecase.FieldUseCase
	Exports     *usecase.ExportUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, hooks Hooks) (*App, error) {
	logger := hooks.Logger
	if logger == nil {
		logger = slog.Default()
	}

	catalog, err := filtercatalog.Load(cfg.FilterCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load filter catalog: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	storeExecutor := resilience.NewExecutor(storeResilienceConfig(cfg, hooks.OnBreakerStateChange), logger)
	assessmentRepo := postgres.NewAssessmentRepository(db, storeExecutor)
	notesRepo := postgres.NewNoteHistoryRepository(db, storeExecutor)
	fieldRepo := postgres.NewFieldRepository(db, storeExecutor, cfg.ImportBatchSize)

	source, err := fieldSource(cfg, storage, fieldRepo, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var (
		queue     *nats.Queue
		publisher ports.EventPublisher
	)
	if cfg.EventsEnabled {
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(publishResilienceConfig(cfg, hooks.OnBreakerStateChange), logger),
			Logger:             logger,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		publisher = queue
	}

	ws := usecase.NewWorkspace(source, fieldRepo, assessmentRepo, logger)
	assessments := usecase.NewAssessmentUseCase(ws, assessmentRepo, notesRepo, publisher, logger)
	dashboard := usecase.NewDashboardUseCase(ws, notesRepo, catalog)
	fields := usecase.NewFieldUseCase(ws, fieldRepo, assessments, catalog, logger)
	exports := usecase.NewExportUseCase(assessmentRepo, ws, csvexport.New(), xlsxexport.New())

	return &App{
		Config:  cfg,
		Logger:  logger,
		Catalog: catalog,

		Storage:   storage,
		FieldRepo: fieldRepo,
		Queue:     queue,

		Workspace:   ws,
		Dashboard:   dashboard,
		Assessments: assessments,
		Fields:      fields,
		Exports:     exports,

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func fieldSource(cfg config.Config, storage *localfs.Storage, repo *postgres.FieldRepository, logger *slog.Logger) (ports.FieldSource, error) {
	switch cfg.CatalogSource {
	case config.CatalogSourceCSV, "":
		return csvsource.New(storage, cfg.CatalogCSVKey, logger), nil
	case config.CatalogSourcePostgres:
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}

func storeResilienceConfig(cfg config.Config, onStateChange func(string, gobreaker.State, gobreaker.State)) resilience.Config {
	out := resilience.DefaultConfig().BreakerOnly()
	out.BreakerEnabled = cfg.StoreBreakerEnabled
	if cfg.StoreBreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.StoreBreakerMinRequests)
	}
	out.BreakerFailureRatio = cfg.StoreBreakerFailureRatio
	out.BreakerOpenTimeout = cfg.StoreBreakerOpenTimeout
	out.OnStateChange = onStateChange
	return out
}

func publishResilienceConfig(cfg config.Config, onStateChange func(string, gobreaker.State, gobreaker.State)) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.PublishRetryMaxAttempts
	out.RetryInitialBackoff = cfg.PublishRetryBackoff
	out.RetryMaxBackoff = 4 * cfg.PublishRetryBackoff
	out.OnStateChange = onStateChange
	return out
}
