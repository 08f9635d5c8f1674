// Package bootstrap wires configuration into the object graph both binaries
// share. The API and the worker build the same graph and then expose
// different slices of it.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dartos/dartos/internal/config"
	"github.com/dartos/dartos/internal/core/ports"
	"github.com/dartos/dartos/internal/core/usecase"
	"github.com/dartos/dartos/internal/infrastructure/chunking"
	"github.com/dartos/dartos/internal/infrastructure/extractor/ocr"
	"github.com/dartos/dartos/internal/infrastructure/extractor/pdfnative"
	"github.com/dartos/dartos/internal/infrastructure/llm/disabled"
	"github.com/dartos/dartos/internal/infrastructure/llm/ollama"
	"github.com/dartos/dartos/internal/infrastructure/quality"
	"github.com/dartos/dartos/internal/infrastructure/queue/nats"
	"github.com/dartos/dartos/internal/infrastructure/repository/postgres"
	"github.com/dartos/dartos/internal/infrastructure/resilience"
	"github.com/dartos/dartos/internal/infrastructure/storage/localfs"
	"github.com/dartos/dartos/internal/infrastructure/vector"
	"github.com/dartos/dartos/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Repo    ports.DocumentRepository
	Queue   ports.MessageQueue
	Storage ports.ObjectStorage
	Index   ports.VectorIndex

	UploadUC  ports.DocumentUploader
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.DocumentQueryService
	DeleteUC  ports.DocumentDeleter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.PublishPolicy()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := newGenerator(cfg, ollamaClient, logger)

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	vectorStore := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	index := vector.NewIndex(chunker, embedder, vectorStore, logger)

	extractor := newExtractor(cfg, storage, logger)

	uploadUC := usecase.NewUploadDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(
		repo,
		extractor,
		quality.NewGate(),
		index,
		resilience.NewExecutor(resilience.IndexingPolicy()),
		logger,
	)
	queryUC := usecase.NewQueryUseCase(index, repo, generator, logger)
	deleteUC := usecase.NewDeleteDocumentUseCase(repo, storage, index, logger)

	return &App{
		Config: cfg,

		Repo:    repo,
		Queue:   queue,
		Storage: storage,
		Index:   index,

		UploadUC:  uploadUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,
		DeleteUC:  deleteUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// newGenerator falls back to the fixed-message generator when no LLM endpoint
// is configured; retrieval keeps working either way.
func newGenerator(cfg config.Config, client *ollama.Client, logger *slog.Logger) ports.AnswerGenerator {
	if cfg.OllamaURL == "" {
		logger.Warn("no LLM endpoint configured, answer generation disabled")
		return disabled.NewGenerator()
	}
	return ollama.NewGenerator(client)
}

// newExtractor chains the native PDF extractor with the optional OCR sidecar
// for scanned documents.
func newExtractor(cfg config.Config, storage ports.ObjectStorage, logger *slog.Logger) ports.TextExtractor {
	var fallback ports.TextExtractor
	if cfg.OCRURL != "" {
		fallback = ocr.New(cfg.OCRURL, storage)
	}
	return pdfnative.NewExtractor(storage, fallback, logger)
}
