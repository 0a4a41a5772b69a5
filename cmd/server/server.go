package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"contentpilot/workflow-api/internal/config"
	"contentpilot/workflow-api/internal/domain/source"
	"contentpilot/workflow-api/internal/domain/stage"
	"contentpilot/workflow-api/internal/domain/template"
	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/auth"
	"contentpilot/workflow-api/internal/infrastructure/database"
	"contentpilot/workflow-api/internal/infrastructure/llmprovider"
	"contentpilot/workflow-api/internal/infrastructure/logger"
	"contentpilot/workflow-api/internal/infrastructure/metrics"
	"contentpilot/workflow-api/internal/infrastructure/observability"
	"contentpilot/workflow-api/internal/infrastructure/queue"
	"contentpilot/workflow-api/internal/infrastructure/reader"
	conversationrepo "contentpilot/workflow-api/internal/infrastructure/repository/conversation"
	promptrepo "contentpilot/workflow-api/internal/infrastructure/repository/prompt"
	templaterepo "contentpilot/workflow-api/internal/infrastructure/repository/template"
	"contentpilot/workflow-api/internal/interfaces/httpserver"
	"contentpilot/workflow-api/internal/interfaces/httpserver/handlers"
	"contentpilot/workflow-api/internal/worker"
)

// queueDepthInterval is how often the queue depth gauge is refreshed.
const queueDepthInterval = 15 * time.Second

// Application bundles the long-running pieces of the service.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

// NewApplication constructs the application.
func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

// Start runs the HTTP server until the context ends.
func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	conversationStore := conversationrepo.NewRepository(db)
	promptRegistry := promptrepo.NewRepository(db)
	templateCatalog := templaterepo.NewRepository(db)

	provider := llmprovider.NewClient(cfg.GenerationAPIURL, cfg.GenerationAPIKey, cfg.GenerationModel)

	var fetcher source.Fetcher
	if cfg.ReaderAPIURL != "" {
		fetcher = reader.NewClient(cfg.ReaderAPIURL, cfg.ReaderToken)
	} else {
		log.Warn().Msg("no reader service configured, source fetching disabled")
	}

	resolver := template.NewResolver(templateCatalog, log)
	invoker := stage.NewInvoker(conversationStore, promptRegistry, provider)
	coordinator := workflow.NewCoordinator(
		conversationStore,
		invoker,
		provider,
		promptRegistry,
		resolver,
		fetcher,
		cfg.GenerationBudget,
		log,
	)

	jobQueue := queue.NewPostgresQueue(db, log)
	workerPool := worker.NewPool(
		jobQueue,
		coordinator,
		worker.Config{
			WorkerCount: cfg.WorkerCount,
			JobTimeout:  cfg.JobTimeout,
		},
		log,
	)

	workerPool.Start(ctx)
	defer func() {
		log.Info().Msg("stopping worker pool")
		workerPool.Stop()
	}()

	go watchQueueDepth(ctx, jobQueue, log)

	handlerProvider := handlers.NewProvider(coordinator, conversationStore, templateCatalog, promptRegistry, jobQueue, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// watchQueueDepth refreshes the queue depth gauge until the context ends.
func watchQueueDepth(ctx context.Context, jobQueue queue.JobQueue, log zerolog.Logger) {
	ticker := time.NewTicker(queueDepthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth, err := jobQueue.GetQueueDepth(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("failed to read queue depth")
				continue
			}
			metrics.QueueDepth.Set(float64(depth))
		}
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
