package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/artifact"
	"mnemo/internal/async"
	"mnemo/internal/cognition"
	"mnemo/internal/config"
	"mnemo/internal/db"
	"mnemo/internal/embedding"
	"mnemo/internal/epistemic"
	"mnemo/internal/extract"
	"mnemo/internal/llm"
	"mnemo/internal/logging"
	"mnemo/internal/memory"
	"mnemo/internal/orchestrator"
	"mnemo/internal/persona"
	"mnemo/internal/retrieval"
	"mnemo/internal/stm"
)

// App holds the wired dependencies shared by the CLI commands.
type App struct {
	Config *config.Config
	Logger logging.Logger

	Pool         *pgxpool.Pool
	MemoryStore  *memory.Store
	PersonaStore *persona.Store
	STMStore     *stm.Store
	PatternLog   *cognition.PatternLog
	ArtifactRepo *artifact.Repository
	Consolidator *memory.Consolidator
	Decay        *memory.Decay

	dbManager *db.Manager
	embedder  embedding.Embedder
	chat      llm.Client
}

// NewApp connects to the database and builds the stores. withProviders also
// constructs the LLM and embedding clients, which serve needs and the
// maintenance commands do not.
func NewApp(ctx context.Context, cfg *config.Config, withProviders bool) (*App, error) {
	logger := logging.NewComponentLogger("mnemo")

	manager := db.NewManager(cfg, logger)
	pool, err := manager.WaitForPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	app := &App{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		MemoryStore:  memory.NewStore(pool, logger),
		PersonaStore: persona.NewStore(pool, logger),
		STMStore:     stm.NewStore(pool, logger),
		PatternLog:   cognition.NewPatternLog(pool, logger),
		ArtifactRepo: artifact.NewRepository(pool, logger),
		dbManager:    manager,
	}
	app.Consolidator = memory.NewConsolidator(pool, app.MemoryStore, logger)
	app.Decay = memory.NewDecay(pool, logger)

	if withProviders {
		app.embedder, err = embedding.NewEmbedder(embedding.Config{
			Model:   cfg.EmbeddingModel,
			APIKey:  cfg.EmbeddingAPIKey,
			BaseURL: cfg.EmbeddingBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("embedder init: %w", err)
		}
		app.chat = llm.NewClient(llm.Config{
			Model:   cfg.LLMModel,
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
		}, logger)
	}

	return app, nil
}

// EnsureSchemas bootstraps every table. Safe to run repeatedly.
func (a *App) EnsureSchemas(ctx context.Context) error {
	steps := []func(context.Context) error{
		a.MemoryStore.EnsureSchema,
		a.PersonaStore.EnsureSchema,
		a.STMStore.EnsureSchema,
		a.PatternLog.EnsureSchema,
		a.ArtifactRepo.EnsureSchema,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	a.Logger.Info("schema bootstrap complete")
	return nil
}

// BuildOrchestrator assembles the per-turn pipeline. It embeds the intent
// prototypes, so it needs the embedding provider reachable.
func (a *App) BuildOrchestrator(ctx context.Context, queue *async.Queue) (*orchestrator.Orchestrator, error) {
	classifier, err := retrieval.NewClassifier(ctx, a.embedder, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("intent classifier init: %w", err)
	}

	rules, err := epistemic.Load()
	if err != nil {
		return nil, err
	}

	objectStore, err := artifact.NewFilesystemStore(a.Config.ArtifactDir, a.Logger)
	if err != nil {
		return nil, err
	}

	return orchestrator.New(orchestrator.Deps{
		Extractor:  extract.NewExtractor(a.chat, a.Logger),
		STMStore:   a.STMStore,
		Scratchpad: stm.NewScratchpad(0),
		Retriever:  retrieval.NewRetriever(a.MemoryStore, a.embedder, classifier, a.Logger),
		Personas:   a.PersonaStore,
		Cognition:  cognition.NewEngine(a.PatternLog, a.Logger),
		Writer:     memory.NewWriter(a.MemoryStore, a.embedder, a.Logger),
		Artifacts:  artifact.NewService(objectStore, a.ArtifactRepo, a.Logger),
		ArtifactDB: a.ArtifactRepo,
		Rules:      epistemic.NewEngine(rules, a.Logger),
		Chat:       a.chat,
		Queue:      queue,
		Logger:     a.Logger,
	}), nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.dbManager.Close()
}
