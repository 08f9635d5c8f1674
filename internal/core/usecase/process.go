package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dartos/dartos/internal/core/domain"
	"github.com/dartos/dartos/internal/core/ports"
	"github.com/dartos/dartos/internal/infrastructure/resilience"
)

// ProcessDocumentUseCase drives a document from uploaded to a terminal
// status: extract text, gate its quality, persist it, then index it with
// retries. Indexing failure is a partial success: the extracted content
// stays usable, the document just is not searchable.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	gate      ports.QualityGate
	index     ports.VectorIndex
	executor  *resilience.Executor
	logger    *slog.Logger
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	gate ports.QualityGate,
	index ports.VectorIndex,
	executor *resilience.Executor,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.IndexingPolicy())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		gate:      gate,
		index:     index,
		executor:  executor,
		logger:    logger,
	}
}

// processOutcome is the terminal state a pipeline run decided on. Every step
// maps its result onto one of these instead of letting errors propagate, so
// the orchestrator persists exactly one transition per run.
type processOutcome struct {
	status     domain.DocumentStatus
	errMessage string
}

func outcomeIndexed() processOutcome {
	return processOutcome{status: domain.StatusIndexed}
}

func outcomeExtractionFailed(err error) processOutcome {
	return processOutcome{
		status:     domain.StatusFailed,
		errMessage: fmt.Sprintf("extraction failed: %v", err),
	}
}

func outcomeValidationFailed(reason string) processOutcome {
	return processOutcome{
		status:     domain.StatusFailed,
		errMessage: fmt.Sprintf("validation failed: %s", reason),
	}
}

func outcomeIndexingExhausted(err error) processOutcome {
	return processOutcome{
		status:     domain.StatusProcessed,
		errMessage: fmt.Sprintf("indexing failed after retries: %v", err),
	}
}

func outcomeFailed(err error) processOutcome {
	return processOutcome{
		status:     domain.StatusFailed,
		errMessage: err.Error(),
	}
}

// ProcessByID is fire-and-forget: every failure inside the run is persisted
// as a status/error pair on the record, and the returned error exists only
// for the scheduler's log. A missing record is swallowed after logging, since
// the caller polls the document and there is nobody to surface it to.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// The document must never rest in processing.
			uc.logger.Error("document processing panicked", "doc_id", documentID, "panic", r)
			markCtx := context.WithoutCancel(ctx)
			if markErr := uc.repo.UpdateStatus(markCtx, documentID, domain.StatusFailed, fmt.Sprintf("panic: %v", r)); markErr != nil {
				uc.logger.Error("failed to persist panic status", "doc_id", documentID, "error", markErr)
			}
			err = fmt.Errorf("processing panicked: %v", r)
		}
	}()

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			uc.logger.Error("document to process does not exist", "doc_id", documentID)
			return nil
		}
		return fmt.Errorf("fetch document by id: %w", err)
	}

	// Persisted before any blocking work so status polls during a slow
	// extraction reflect reality.
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	outcome := uc.runPipeline(ctx, doc)

	// The run's context may already be dead (job timeout, shutdown). The
	// terminal status must still land, otherwise the record rests in
	// processing forever.
	markCtx := context.WithoutCancel(ctx)
	if err := uc.repo.UpdateStatus(markCtx, documentID, outcome.status, outcome.errMessage); err != nil {
		return fmt.Errorf("set status=%s: %w", outcome.status, err)
	}

	uc.logger.Info("document processing finished",
		"doc_id", documentID,
		"status", outcome.status,
		"error_message", outcome.errMessage,
	)
	return nil
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, doc *domain.Document) processOutcome {
	text, err := uc.extractor.Extract(ctx, doc.StoragePath)
	if err != nil {
		return outcomeExtractionFailed(err)
	}

	// Covers the empty-text case too: extraction that yields nothing never
	// passes the gate.
	if verdict := uc.gate.Validate(text); !verdict.Valid {
		return outcomeValidationFailed(verdict.Reason)
	}

	// Content is written once per run, before indexing, so a later indexing
	// failure cannot discard the extracted text.
	if err := uc.repo.SaveContent(ctx, doc.ID, text); err != nil {
		return outcomeFailed(fmt.Errorf("save extracted content: %w", err))
	}

	indexErr := uc.executor.Execute(ctx, "vector.index", func(callCtx context.Context) error {
		return uc.index.Index(callCtx, doc.ID, text)
	}, resilience.RetryAll)
	if indexErr != nil {
		return outcomeIndexingExhausted(indexErr)
	}

	return outcomeIndexed()
}
