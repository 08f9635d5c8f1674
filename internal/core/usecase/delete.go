package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dartos/dartos/internal/core/ports"
)

// DeleteDocumentUseCase removes a document record, its indexed chunks and
// its stored file. Chunks go first: a record without chunks is consistent,
// orphaned chunks pointing at a deleted record are not.
type DeleteDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	index   ports.VectorIndex
	logger  *slog.Logger
}

func NewDeleteDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	index ports.VectorIndex,
	logger *slog.Logger,
) *DeleteDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteDocumentUseCase{
		repo:    repo,
		storage: storage,
		index:   index,
		logger:  logger,
	}
}

func (uc *DeleteDocumentUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.index.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete indexed chunks: %w", err)
	}

	if err := uc.repo.Delete(ctx, doc.ID); err != nil {
		return err
	}

	// The stored file is unreachable once the record is gone; a leftover
	// file is only wasted disk, not an inconsistency worth failing over.
	if err := uc.storage.Remove(ctx, doc.StoragePath); err != nil {
		uc.logger.Warn("failed to remove stored file", "doc_id", doc.ID, "storage_path", doc.StoragePath, "error", err)
	}
	return nil
}
