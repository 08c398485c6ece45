package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/velardo/doccontrol/internal/config"
	"github.com/velardo/doccontrol/internal/core/ports"
	"github.com/velardo/doccontrol/internal/core/usecase"
	"github.com/velardo/doccontrol/internal/infrastructure/export/excel"
	"github.com/velardo/doccontrol/internal/infrastructure/queue/nats"
	"github.com/velardo/doccontrol/internal/infrastructure/repository/postgres"
	"github.com/velardo/doccontrol/internal/infrastructure/resilience"
	"github.com/velardo/doccontrol/internal/infrastructure/seed"
	"github.com/velardo/doccontrol/internal/infrastructure/storage/localfs"
	"github.com/velardo/doccontrol/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Lifecycle ports.RevisionLifecycle
	Resolver  ports.WorkflowResolver
	Checker   ports.PresetChecker
	Reviews   ports.ReviewRecorder

	Revisions ports.RevisionStore
	Documents ports.DocumentStore
	Refs      ports.ReferenceResolver
	Rules     ports.RuleStore
	Storage   ports.ContentStorage
	Exporter  *excel.TransmittalWriter
	Metrics   *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	refs := postgres.NewReferenceRepository(db)
	if cfg.ReferenceSeedPath != "" {
		vocab, err := seed.LoadVocabularyFile(cfg.ReferenceSeedPath)
		if err != nil {
			return nil, fmt.Errorf("load reference seed: %w", err)
		}
		if err := seed.Apply(ctx, refs, vocab, logger); err != nil {
			return nil, fmt.Errorf("apply reference seed: %w", err)
		}
	}

	// Status rows must exist before any lifecycle operation can run.
	statuses, err := refs.ResolveStatusRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve status registry: %w", err)
	}

	documents := postgres.NewDocumentRepository(db)
	revisions := postgres.NewRevisionRepository(db, statuses)
	rules := postgres.NewRuleRepository(db, logger)
	reviews := postgres.NewReviewRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init content storage: %w", err)
	}

	executor := resilience.NewExecutorWithLogger(resilience.DefaultConfig(), logger)
	publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init event publisher: %w", err)
	}

	lifecycle := usecase.NewRevisionLifecycleUseCase(documents, revisions, storage, publisher, logger)
	resolver := usecase.NewWorkflowRuleEngineUseCase(rules, refs)
	checker := usecase.NewPresetCheckerUseCase(rules)
	reviewer := usecase.NewReviewUseCase(revisions, reviews, refs, resolver)

	return &App{
		Config: cfg,
		Logger: logger,

		Lifecycle: lifecycle,
		Resolver:  resolver,
		Checker:   checker,
		Reviews:   reviewer,

		Revisions: revisions,
		Documents: documents,
		Refs:      refs,
		Rules:     rules,
		Storage:   storage,
		Exporter:  excel.NewTransmittalWriter(),
		Metrics:   metrics.NewHTTPServerMetrics("api"),

		closeFn: func() {
			publisher.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
