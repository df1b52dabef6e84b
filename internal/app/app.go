package app

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"kvasir/internal/config"
	"kvasir/internal/job"
	"kvasir/internal/llm"
	"kvasir/internal/pipelines"
	"kvasir/internal/services"
	"kvasir/internal/store"
)

// App wires configuration, providers, and one engine per job kind.
type App struct {
	Config *config.Config

	Completer llm.Completer
	Embedder  llm.Embedder

	VectorStore *store.VectorStore // nil when no DSN is configured

	Ask             *services.AskService
	Chart           *services.ChartService
	ChartAdjustment *services.ChartAdjustmentService
	Questions       *services.QuestionService
	Correction      *services.CorrectionService
	Indexing        *services.IndexingService

	stopSweeps []func()
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if err := a.initProviders(); err != nil {
		return nil, err
	}
	if err := a.initVectorStore(); err != nil {
		a.Close()
		return nil, err
	}
	a.initServices()

	log.Info("Application initialization complete.")
	return a, nil
}

func (a *App) initProviders() error {
	switch a.Config.LLM.Provider {
	case "openai", "":
		p := llm.NewOpenAIProvider(a.Config.LLM.OpenAIAPIKey, a.Config.LLM.Model, a.Config.LLM.EmbeddingModel)
		a.Completer = p
		a.Embedder = p
	case "gemini":
		p, err := llm.NewGeminiProvider(context.Background(), a.Config.LLM.GoogleAPIKey, a.Config.LLM.Model, a.Config.LLM.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("init gemini provider: %w", err)
		}
		a.Completer = p
		a.Embedder = p
	default:
		return fmt.Errorf("unknown llm provider %q", a.Config.LLM.Provider)
	}
	return nil
}

func (a *App) initVectorStore() error {
	if a.Config.Vector.DSN == "" {
		log.Warn("Vector DSN not configured. Retrieval and indexing will be unavailable.")
		return nil
	}
	vs, err := store.NewVectorStore(context.Background(), a.Config.Vector.DSN)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	a.VectorStore = vs
	return nil
}

func (a *App) initServices() {
	observer := job.NewLogObserver()
	sweep := a.Config.SweepInterval()

	newEngine := func(kind string, classify job.Classifier, notFound job.Code) *services.Engine {
		registry := job.NewRegistry(job.RegistryConfig{
			TTL:      a.Config.RegistryTTL(),
			Capacity: a.Config.Registry.Capacity,
		})
		if sweep > 0 {
			a.stopSweeps = append(a.stopSweeps, registry.StartSweep(sweep))
		}
		return services.NewEngine(services.EngineConfig{
			Kind:         kind,
			Registry:     registry,
			Classify:     classify,
			Observer:     observer,
			NotFoundCode: notFound,
		})
	}

	var retriever pipelines.Retriever = unconfiguredRetriever{}
	var docStore pipelines.DocumentStore = unconfiguredStore{}
	if a.VectorStore != nil {
		retriever = &pipelines.VectorRetriever{Embedder: a.Embedder, Store: a.VectorStore}
		docStore = a.VectorStore
	}

	askPipeline := &pipelines.Ask{
		Completer:     a.Completer,
		Retriever:     retriever,
		TopK:          a.Config.Ask.TopK,
		MaxCandidates: a.Config.Ask.MaxCandidates,
	}
	a.Ask = services.NewAskService(
		newEngine("ask", askPipeline.Classify, job.CodeResourceNotFound), askPipeline)

	chartPipeline := &pipelines.Chart{Completer: a.Completer}
	a.Chart = services.NewChartService(
		newEngine("chart", chartPipeline.Classify, job.CodeNotFound), chartPipeline)
	a.ChartAdjustment = services.NewChartAdjustmentService(
		newEngine("chart_adjustment", chartPipeline.Classify, job.CodeNotFound), chartPipeline)

	questionPipeline := &pipelines.QuestionRecommendation{Completer: a.Completer, Retriever: retriever}
	a.Questions = services.NewQuestionService(
		newEngine("question_recommendation", questionPipeline.Classify, job.CodeNotFound), questionPipeline)

	correctionPipeline := &pipelines.SQLCorrection{Completer: a.Completer}
	a.Correction = services.NewCorrectionService(
		newEngine("sql_correction", correctionPipeline.Classify, job.CodeNotFound), correctionPipeline)

	indexingPipeline := &pipelines.Indexing{
		Embedder:  a.Embedder,
		Store:     docStore,
		BatchSize: a.Config.Indexing.EmbedBatchSize,
	}
	a.Indexing = services.NewIndexingService(
		newEngine("indexing", pipelines.IndexingClassifier, job.CodeNotFound), indexingPipeline)
}

// Close stops background sweeps and releases connections.
func (a *App) Close() {
	for _, stop := range a.stopSweeps {
		stop()
	}
	a.stopSweeps = nil
	if a.VectorStore != nil {
		a.VectorStore.Close()
	}
	if closer, ok := a.Completer.(interface{ Close() error }); ok {
		closer.Close()
	}
}

type unconfiguredRetriever struct{}

func (unconfiguredRetriever) Search(context.Context, string, string, int) ([]store.ScoredDocument, error) {
	return nil, fmt.Errorf("vector store is not configured")
}

type unconfiguredStore struct{}

func (unconfiguredStore) Upsert(context.Context, []store.Document, []pgvector.Vector) error {
	return fmt.Errorf("vector store is not configured")
}

func (unconfiguredStore) DeleteProject(context.Context, string) error {
	return fmt.Errorf("vector store is not configured")
}
