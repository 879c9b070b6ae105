// medsync-orchestrator serves the chat-stream and health HTTP endpoints,
// wiring the LLM provider, device catalog, session store, vector stores,
// clinical eligibility registry, and the chain/database/vector/clinical/
// planned/general engine registry into one orchestrator.Orchestrator.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/medsync-ai/orchestrator/pkg/api"
	"github.com/medsync-ai/orchestrator/pkg/chainengine"
	"github.com/medsync-ai/orchestrator/pkg/config"
	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/docstore"
	"github.com/medsync-ai/orchestrator/pkg/eligibility"
	"github.com/medsync-ai/orchestrator/pkg/engines"
	"github.com/medsync-ai/orchestrator/pkg/health"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/masking"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/medsync-ai/orchestrator/pkg/orchestrator"
	"github.com/medsync-ai/orchestrator/pkg/sessionstore"
	"github.com/medsync-ai/orchestrator/pkg/vectorstore"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: could not load %s: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpAddr := ":" + getEnv("HTTP_PORT", "8080")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()
	if err := sessionstore.Migrate(ctx, cfg.Database.DSN()); err != nil {
		log.Fatalf("failed to migrate session store: %v", err)
	}
	if err := docstore.Migrate(cfg.Database.DSN()); err != nil {
		log.Fatalf("failed to migrate device catalog store: %v", err)
	}
	slog.Info("connected to PostgreSQL, schema migrated")

	sessions := sessionstore.New(pool)
	catalogReader := docstore.NewCatalogReader(pool)

	devices := devicestore.New()
	if err := devices.LoadFromDocStore(ctx, catalogReader); err != nil {
		log.Fatalf("failed to load device catalog: %v", err)
	}
	slog.Info("device catalog loaded")

	anthropicClient := anthropic.NewClient(option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")))
	llm := llmprovider.NewAnthropicProvider(anthropicClient)

	embedder := vectorstore.NewHashEmbedder(cfg.VectorStore.EmbeddingDims)
	docsStore, err := vectorstore.NewPgvectorStore(ctx, cfg.VectorStore.ConnectionURL, cfg.VectorStore.EmbeddingDims, embedder)
	if err != nil {
		log.Fatalf("failed to connect to document vector store: %v", err)
	}
	defer docsStore.Close()

	var guidelinesStore *vectorstore.PgvectorStore
	if guidelineURL := os.Getenv("GUIDELINE_STORE_URL"); guidelineURL != "" {
		guidelinesStore, err = vectorstore.NewPgvectorStore(ctx, guidelineURL, cfg.VectorStore.EmbeddingDims, embedder)
		if err != nil {
			log.Fatalf("failed to connect to guideline vector store: %v", err)
		}
		defer guidelinesStore.Close()
	} else {
		slog.Warn("GUIDELINE_STORE_URL not set, vector engine will skip guideline fallback search")
	}

	masker := masking.NewService()

	rulesPath := getEnv("ELIGIBILITY_RULES_PATH", filepath.Join(*configDir, "eligibility_rules.yaml"))
	rules, err := eligibility.LoadRuleSetFromFile(rulesPath)
	if err != nil {
		log.Fatalf("failed to load clinical eligibility rules: %v", err)
	}
	pathways := eligibility.NewRegistry(rules)

	tokenFlusher := docstore.NewTokenFlusher(sessions)
	tokenFlusher.Start(ctx)
	defer tokenFlusher.Stop()

	classifierModel, err := cfg.Models.Resolve("classify")
	if err != nil {
		log.Fatalf("failed to resolve classifier model: %v", err)
	}
	builderModel, err := cfg.Models.Resolve("chain_builder")
	if err != nil {
		log.Fatalf("failed to resolve chain builder model: %v", err)
	}
	chain := chainengine.New(llm, devices, classifierModel, builderModel)

	registry := orchestrator.Registry{}

	registry[models.EngineChain] = engines.NewChainEngine(chain)

	dbModel, err := cfg.Models.Resolve("database")
	if err != nil {
		log.Fatalf("failed to resolve database engine model: %v", err)
	}
	dbPrompt, err := cfg.Prompts.Load("database")
	if err != nil {
		log.Fatalf("failed to load database engine prompt: %v", err)
	}
	registry[models.EngineDatabase] = engines.NewDatabaseEngine(llm, devices, dbModel, dbPrompt)

	vectorModel, err := cfg.Models.Resolve("vector")
	if err != nil {
		log.Fatalf("failed to resolve vector engine model: %v", err)
	}
	vectorPrompt, err := cfg.Prompts.Load("vector")
	if err != nil {
		log.Fatalf("failed to load vector engine prompt: %v", err)
	}
	var guidelinesProvider vectorstore.Provider
	if guidelinesStore != nil {
		guidelinesProvider = guidelinesStore
	}
	registry[models.EngineVector] = engines.NewVectorEngine(llm, docsStore, guidelinesProvider, vectorModel, vectorPrompt)

	clinicalExtractModel, err := cfg.Models.Resolve("extract")
	if err != nil {
		log.Fatalf("failed to resolve clinical extract model: %v", err)
	}
	clinicalExtractPrompt, err := cfg.Prompts.Load("clinical_extract")
	if err != nil {
		log.Fatalf("failed to load clinical extract prompt: %v", err)
	}
	clinicalSynthesisModel, err := cfg.Models.Resolve("clinical_synthesis")
	if err != nil {
		log.Fatalf("failed to resolve clinical synthesis model: %v", err)
	}
	clinicalSynthesisPrompt, err := cfg.Prompts.Load("clinical_synthesis")
	if err != nil {
		log.Fatalf("failed to load clinical synthesis prompt: %v", err)
	}
	registry[models.EngineClinical] = engines.NewClinicalEngine(llm, pathways,
		clinicalExtractModel, clinicalExtractPrompt, clinicalSynthesisModel, clinicalSynthesisPrompt)

	generalModel, err := cfg.Models.Resolve("general")
	if err != nil {
		log.Fatalf("failed to resolve general engine model: %v", err)
	}
	generalPrompt, err := cfg.Prompts.Load("general")
	if err != nil {
		log.Fatalf("failed to load general engine prompt: %v", err)
	}
	registry[models.EngineGeneral] = engines.NewGeneralEngine(llm, generalModel, generalPrompt)

	registry[models.EngineResearch] = engines.NewResearchEngine()

	plannerModel, err := cfg.Models.Resolve("planner")
	if err != nil {
		log.Fatalf("failed to resolve planner model: %v", err)
	}
	plannerPrompt, err := cfg.Prompts.Load("planner")
	if err != nil {
		log.Fatalf("failed to load planner prompt: %v", err)
	}
	// registry is a reference type: PlannedEngine holds the same map and
	// sees every entry added above plus its own entry, added last.
	registry[models.EnginePlanned] = engines.NewPlannedEngine(llm, registry, plannerModel, plannerPrompt)

	orch := orchestrator.New(llm, cfg.Models, cfg.Prompts, devices, sessions, tokenFlusher, masker, registry)

	monitor := health.NewMonitor([]health.Collaborator{
		{Name: "llm_provider", Check: func(ctx context.Context) error {
			_, err := llm.Call(ctx, "", []llmprovider.Message{{Role: llmprovider.RoleUser, Content: "ping"}}, nil, classifierModel, 1)
			return err
		}},
		{Name: "document_vector_store", Check: func(ctx context.Context) error {
			_, err := docsStore.Search(ctx, "ping", nil, 1)
			return err
		}},
		{Name: "device_catalog_store", Check: func(ctx context.Context) error {
			_, err := catalogReader.LoadDevices(ctx)
			return err
		}},
	})
	monitor.Start(ctx)
	defer monitor.Stop()

	server := api.NewServer(orch)
	server.SetHealthMonitor(monitor)
	if err := server.ValidateWiring(); err != nil {
		log.Fatalf("server wiring incomplete: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpAddr)
		errCh <- server.Start(httpAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}
