package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dartos/dartos/internal/core/domain"
	"github.com/dartos/dartos/internal/core/ports"
)

const (
	defaultTopK = 5

	noDocumentsMessage = "No documents have been uploaded yet. " +
		"Please upload some PDF documents first."
	noMatchesMessage = "No relevant content found in the uploaded documents for this query. " +
		"Try rephrasing your question or uploading more relevant documents."
)

// QueryUseCase retrieves the most relevant chunks for a query and asks the
// generator to summarize them. It never returns an error: an empty index, a
// search failure or a generation failure all degrade to an explanatory
// response that still carries whatever evidence was retrieved.
type QueryUseCase struct {
	index     ports.VectorIndex
	repo      ports.DocumentRepository
	generator ports.AnswerGenerator
	logger    *slog.Logger
}

func NewQueryUseCase(
	index ports.VectorIndex,
	repo ports.DocumentRepository,
	generator ports.AnswerGenerator,
	logger *slog.Logger,
) *QueryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryUseCase{
		index:     index,
		repo:      repo,
		generator: generator,
		logger:    logger,
	}
}

func (uc *QueryUseCase) Answer(ctx context.Context, query string, topK int, customPrompt string) (*domain.QueryResult, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	chunks := uc.index.Search(ctx, query, topK)
	if len(chunks) == 0 {
		return &domain.QueryResult{
			Query:    query,
			Response: uc.emptyResultMessage(ctx),
			Chunks:   []string{},
		}, nil
	}

	response, err := uc.generator.Generate(ctx, query, chunks, customPrompt)
	if err != nil {
		uc.logger.Error("answer generation failed", "error", err)
		response = fmt.Sprintf("Error generating LLM response: %v. Retrieved context chunks are available below.", err)
	}

	return &domain.QueryResult{
		Query:    query,
		Response: response,
		Chunks:   chunks,
	}, nil
}

// emptyResultMessage distinguishes "nothing uploaded yet" from "nothing
// matched". When the count itself fails, assume documents exist: telling a
// user with uploaded documents that there are none is the worse mistake.
func (uc *QueryUseCase) emptyResultMessage(ctx context.Context) string {
	count, err := uc.repo.Count(ctx)
	if err != nil {
		uc.logger.Error("document count failed", "error", err)
		return noMatchesMessage
	}
	if count == 0 {
		return noDocumentsMessage
	}
	return noMatchesMessage
}
