//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"contentpilot/workflow-api/internal/config"
	"contentpilot/workflow-api/internal/domain/conversation"
	"contentpilot/workflow-api/internal/domain/llm"
	"contentpilot/workflow-api/internal/domain/prompt"
	"contentpilot/workflow-api/internal/domain/source"
	"contentpilot/workflow-api/internal/domain/stage"
	"contentpilot/workflow-api/internal/domain/template"
	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/auth"
	"contentpilot/workflow-api/internal/infrastructure/database"
	"contentpilot/workflow-api/internal/infrastructure/llmprovider"
	"contentpilot/workflow-api/internal/infrastructure/logger"
	"contentpilot/workflow-api/internal/infrastructure/queue"
	"contentpilot/workflow-api/internal/infrastructure/reader"
	conversationrepo "contentpilot/workflow-api/internal/infrastructure/repository/conversation"
	promptrepo "contentpilot/workflow-api/internal/infrastructure/repository/prompt"
	templaterepo "contentpilot/workflow-api/internal/infrastructure/repository/template"
	"contentpilot/workflow-api/internal/interfaces/httpserver"
	"contentpilot/workflow-api/internal/interfaces/httpserver/handlers"
)

var workflowSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Store), new(*conversationrepo.Repository)),
	promptrepo.NewRepository,
	wire.Bind(new(prompt.Registry), new(*promptrepo.Repository)),
	templaterepo.NewRepository,
	wire.Bind(new(template.Catalog), new(*templaterepo.Repository)),
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newSourceFetcher,
	template.NewResolver,
	wire.Bind(new(workflow.TemplateResolver), new(*template.Resolver)),
	stage.NewInvoker,
	wire.Bind(new(workflow.StageInvoker), new(*stage.Invoker)),
	newCoordinator,
	wire.Bind(new(workflow.Service), new(*workflow.Coordinator)),
	queue.NewPostgresQueue,
	wire.Bind(new(queue.JobQueue), new(*queue.PostgresQueue)),
	handlers.NewProvider,
)

// BuildApplication assembles the workflow service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		workflowSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.GenerationAPIURL, cfg.GenerationAPIKey, cfg.GenerationModel)
}

func newSourceFetcher(cfg *config.Config) source.Fetcher {
	if cfg.ReaderAPIURL == "" {
		return nil
	}
	return reader.NewClient(cfg.ReaderAPIURL, cfg.ReaderToken)
}

func newCoordinator(
	store conversation.Store,
	invoker workflow.StageInvoker,
	provider llm.Provider,
	registry prompt.Registry,
	resolver workflow.TemplateResolver,
	fetcher source.Fetcher,
	cfg *config.Config,
	log zerolog.Logger,
) *workflow.Coordinator {
	return workflow.NewCoordinator(store, invoker, provider, registry, resolver, fetcher, cfg.GenerationBudget, log)
}
