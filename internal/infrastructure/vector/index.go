// Package vector wires the chunker, the embedder and the similarity store
// into the index surface the processing pipeline and the query engine use.
package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dartos/dartos/internal/core/domain"
	"github.com/dartos/dartos/internal/core/ports"
)

type Index struct {
	chunker  ports.Chunker
	embedder ports.Embedder
	store    ports.VectorStore
	logger   *slog.Logger
}

func NewIndex(chunker ports.Chunker, embedder ports.Embedder, store ports.VectorStore, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Index replaces a document's chunks wholesale: stale points are deleted
// before the fresh set is upserted, so a re-indexed document never
// accumulates duplicate fragments. Text that chunks to nothing is a no-op,
// not an error.
func (ix *Index) Index(ctx context.Context, docID string, text string) error {
	chunks := ix.chunker.Split(text)
	if len(chunks) == 0 {
		ix.logger.Warn("indexing skipped, no chunks produced", "doc_id", docID)
		return nil
	}

	if err := ix.store.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete stale chunks: %w", err)
	}

	vectors, err := ix.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	if err := ix.store.UpsertChunks(ctx, docID, chunks, vectors); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	return nil
}

// Search degrades to an empty result on any backing failure. Query callers
// get their "nothing matched" answer; the cause lands in the log.
func (ix *Index) Search(ctx context.Context, query string, limit int) []string {
	vector, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		ix.logger.Error("query embedding failed", "error", err)
		return nil
	}

	hits, err := ix.store.QueryByVector(ctx, vector, limit)
	if err != nil {
		ix.logger.Error("vector search failed", "error", err)
		return nil
	}

	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Text)
	}
	return texts
}

func (ix *Index) Delete(ctx context.Context, docID string) error {
	if err := ix.store.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete document chunks: %w", err)
	}
	return nil
}

// Chunks returns a document's chunk texts ordered by chunk index. Audit
// surface only; not on the query path.
func (ix *Index) Chunks(ctx context.Context, docID string) ([]string, error) {
	chunks, err := ix.store.ChunksByDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load document chunks: %w", err)
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}
	return texts, nil
}
